package handlers

import "github.com/rogerio-castellano/catalog-service/internal/catalog"

type ProductValidationError = catalog.FieldError

func idMismatch(pathID int, bodyID *int) []ProductValidationError {
	if bodyID == nil || *bodyID == pathID {
		return nil
	}
	return []ProductValidationError{{Field: "id", Description: "id in body does not match id in path"}}
}
