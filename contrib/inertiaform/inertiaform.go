// Package inertiaform decodes form and query payloads into structs and
// surfaces decode failures as inertia validation errors, ready for the
// error-bag flow.
package inertiaform

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/form/v4"

	"github.com/pagefold/inertia"
)

//nolint:gochecknoglobals
var DefaultDecoder = form.NewDecoder()

// Decode parses the request's form data (body and query) into dst.
//
// Field-level decode failures are returned as inertia.ValidationErrors so
// callers can hand them straight to the renderer:
//
//	if err := inertiaform.Decode(r, &input); err != nil {
//	    var verrs inertia.ValidationErrors
//	    if errors.As(err, &verrs) {
//	        return inertia.Render(w, r, "Form", inertia.NewRenderContext(
//	            inertia.WithValidationErrors(verrs, inertia.ErrorBagFromRequest(r))))
//	    }
//	    return err
//	}
func Decode(r *http.Request, dst any) error {
	return DecodeWith(DefaultDecoder, r, dst)
}

// DecodeWith is like Decode with a caller-supplied decoder.
func DecodeWith(decoder *form.Decoder, r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("inertiaform: failed to parse form: %w", err)
	}

	err := decoder.Decode(dst, r.Form)
	if err == nil {
		return nil
	}

	var decodeErrs form.DecodeErrors
	if errors.As(err, &decodeErrs) {
		verrs := make(inertia.ValidationErrors, 0, len(decodeErrs))
		for field, ferr := range decodeErrs {
			verrs = append(verrs, inertia.NewValidationError(field, ferr.Error()))
		}

		return verrs
	}

	return fmt.Errorf("inertiaform: failed to decode form: %w", err)
}
