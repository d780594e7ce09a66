package models

type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
