package models

// ListResponse is returned by the document store when a collection is read.
type ListResponse struct {
	// Collection echoes the collection that was read.
	Collection Collection `json:"collection"`

	// Records are all documents of the requested business.
	Records []Record `json:"records"`

	// Length is len(Records), provided so clients can validate the payload
	// without iterating it.
	Length int `json:"length"`
}

// ErrorResponse is the JSON body of every non-2xx document store response.
type ErrorResponse struct {
	Error string `json:"error"`
}
