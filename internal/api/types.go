package api

// PetKind is one entry of the reference data: a category with a numeric id
// and the label shown to the user. Kinds are fetched once per session and
// never mutated by the client.
type PetKind struct {
	Value       int    `json:"value"`
	DisplayName string `json:"displayName"`
}

// PetListItem is the summary projection returned by GET /pet/all.
type PetListItem struct {
	PetID     int    `json:"petId"`
	PetName   string `json:"petName"`
	AddedDate Date   `json:"addedDate"`
	Kind      int    `json:"kind"`
}

// PetFormData is a full pet record minus its id. It is the request body for
// both POST /pet and PUT /pet/{petId}.
type PetFormData struct {
	PetName        string `json:"petName"`
	Kind           int    `json:"kind"`
	Age            int    `json:"age"`
	Notes          string `json:"notes,omitempty"`
	HealthProblems bool   `json:"healthProblems"`
	AddedDate      Date   `json:"addedDate"`
}

// Pet is the full record as the server returns it. The server is the source
// of truth for every field; the client only ever holds pets in memory.
type Pet struct {
	PetID int `json:"petId"`
	PetFormData
}
