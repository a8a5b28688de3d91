package types

// GeoPlace is a single entry of the GeoNames searchJSON "geonames" array.
// Field names keep the GeoNames casing so the verify endpoint returns the record as received.
type GeoPlace struct {
	GeonameID   int64  `json:"geonameId"`
	Name        string `json:"name"`
	ToponymName string `json:"toponymName,omitempty"`
	CountryName string `json:"countryName,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	CountryID   string `json:"countryId,omitempty"`
	AdminName1  string `json:"adminName1,omitempty"`
	AdminCode1  string `json:"adminCode1,omitempty"`
	Lat         string `json:"lat,omitempty"`
	Lng         string `json:"lng,omitempty"`
	Population  int64  `json:"population,omitempty"`
	FCL         string `json:"fcl,omitempty"`
	FCLName     string `json:"fclName,omitempty"`
	FCode       string `json:"fcode,omitempty"`
	FCodeName   string `json:"fcodeName,omitempty"`
}

// GeoSearchResponse is the searchJSON payload.
// Status is only set when GeoNames rejects the request (bad credential, quota, ...).
type GeoSearchResponse struct {
	TotalResultsCount int        `json:"totalResultsCount"`
	Geonames          []GeoPlace `json:"geonames"`
	Status            *GeoStatus `json:"status,omitempty"`
}

// GeoStatus is the error envelope GeoNames returns with HTTP 200.
type GeoStatus struct {
	Message string `json:"message"`
	Value   int    `json:"value"`
}

// VerifyCityResponse is returned by GET /cities/verify/{name}.
type VerifyCityResponse struct {
	Valid   bool      `json:"valid"`
	Data    *GeoPlace `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
}
