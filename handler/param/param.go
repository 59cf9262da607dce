package param

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.SetAliasTag("json")
}

// Binding binds query values or a json body onto v and validates it
func Binding(r *http.Request, v interface{}) error {
	if r.Method == http.MethodGet {
		if err := decoder.Decode(v, r.URL.Query()); err != nil {
			return err
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
			return err
		}
	}

	if _, err := govalidator.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}
