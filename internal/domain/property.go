package domain

// Property is a listable home from the property catalog.
type Property struct {
	ID             string
	Address        string
	City           string
	State          string
	Zip            string
	Bedrooms       int
	Bathrooms      float64
	Sqft           int
	EstimatedValue int64
}

// DefaultProperties is the catalog served when no remote catalog is configured.
func DefaultProperties() []Property {
	return []Property{
		{
			ID:             "prop-456",
			Address:        "123 Main Street",
			City:           "San Francisco",
			State:          "CA",
			Zip:            "94102",
			Bedrooms:       3,
			Bathrooms:      2,
			Sqft:           1500,
			EstimatedValue: 850000,
		},
		{
			ID:             "prop-789",
			Address:        "456 Oak Avenue",
			City:           "San Francisco",
			State:          "CA",
			Zip:            "94103",
			Bedrooms:       2,
			Bathrooms:      1,
			Sqft:           1000,
			EstimatedValue: 650000,
		},
	}
}
