// Package handlers provides the HTTP request handlers for the DevRecruit
// API. Handlers depend on narrow service interfaces so that tests can swap
// in mocks, decode and bound their request bodies, and translate service
// errors into the response envelope through the error classifier.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/errclass"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// pathUserID parses the {userID} URL parameter.
func pathUserID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, constants.ParamUserID), 10, 64)
}

// writeError records err with the classifier under the named operation and
// writes the error envelope. Application errors keep their own status and
// field details; anything else carries the classified code, user message and
// retry hint.
func writeError(w http.ResponseWriter, r *http.Request, classifier *errclass.Classifier, err error, operation string) {
	classification := classifier.Handle(r.Context(), err, operation)

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		if fields := validationFields(appErr); fields != nil {
			utils.ValidationError(w, fields)
			return
		}
		utils.ErrorFromAppError(w, appErr)
		return
	}

	utils.Classified(w, errclass.HTTPStatus(classification), classification.Code, classification.UserMessage, classification.ShouldRetry)
}

// validationFields flattens a multi-field validation error for the response,
// or returns nil when appErr is not that shape.
func validationFields(appErr *utils.AppError) map[string]string {
	if !errors.Is(appErr.Err, utils.ErrValidation) || len(appErr.Details) == 0 {
		return nil
	}
	fields := make(map[string]string, len(appErr.Details))
	for field, message := range appErr.Details {
		if text, ok := message.(string); ok {
			fields[field] = text
		} else {
			fields[field] = fmt.Sprintf("%v", message)
		}
	}
	return fields
}
