package model

// Emiten is a listed issuer from the ticker catalog.
type Emiten struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
