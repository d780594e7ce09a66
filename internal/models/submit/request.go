package models

type SubmitRequest struct {
	Answer string `json:"answer"`
}
