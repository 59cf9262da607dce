package render

import (
	"encoding/json"
	"net/http"

	"lotus/core"

	"github.com/sirupsen/logrus"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorln(err)
	}
}

// Text render with text
func Text(w http.ResponseWriter, t string) {
	w.Header().Set("Content-Type", "application/text")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(t)); err != nil {
		logrus.Errorln(err)
	}
}

// Error write error
func Error(w http.ResponseWriter, statusCode, errCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(H{"code": errCode, "msg": err.Error()}); err != nil {
		logrus.Errorln(err)
	}
}

// OperationError maps pool error codes to a 4xx response; anything
// else is an internal error
func OperationError(w http.ResponseWriter, err error) {
	if code, ok := err.(core.ErrorCode); ok {
		Error(w, http.StatusBadRequest, int(code), err)
		return
	}

	Error(w, http.StatusInternalServerError, -1, err)
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, -1, err)
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, -1, err)
}
