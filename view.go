package baldr

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"runtime/debug"
)

// unknownErrorMessage is the sanitized message for unhandled failures.
const unknownErrorMessage = "An unknown error has occurred, the developers have been notified."

// serve is the outermost adapter for one matched route: it negotiates the
// wire content type, runs the dispatcher, converts every failure into an
// encoded Error resource, and writes the response. Nothing escapes it.
func (a *ResourceAPI) serve(w http.ResponseWriter, r *http.Request, kind string, p Params) {
	contentType := resolveContentType(a.resolvers, r, a.codecs)
	codec, ok := a.codecs.Resolve(contentType)
	if !ok {
		// No codec was established, so a rich response is impossible.
		w.WriteHeader(http.StatusNotAcceptable)
		io.WriteString(w, "Content cannot be returned in the format requested.") //nolint:errcheck // best effort
		return
	}
	r = withCodec(r, codec)

	result, err := a.invoke(r, kind, p)

	var imm *ImmediateResponse
	if errors.As(err, &imm) {
		for key, values := range imm.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		a.write(w, codec, imm.Resource, imm.Status)
		return
	}

	var resource any
	var status int
	if err != nil {
		e := a.errorResource(err)
		resource, status = e, e.Status
	} else {
		resource, status = shapeResult(result)
	}
	a.write(w, codec, resource, status)
}

// invoke runs the dispatcher, converting a panicking handler into an
// error so it reports through the same unhandled-error path.
func (a *ResourceAPI) invoke(r *http.Request, kind string, p Params) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &panicError{value: rec, stack: debug.Stack()}
		}
	}()
	return a.dispatch(r, kind, p)
}

// shapeResult normalizes a handler's return value into (resource, status):
// an explicit Response pair is honored, a bare resource is a 200, and nil
// is a 204 with an empty body.
func shapeResult(result any) (any, int) {
	switch v := result.(type) {
	case nil:
		return nil, http.StatusNoContent
	case *Response:
		status := v.Status
		if status == 0 {
			if v.Resource == nil {
				status = http.StatusNoContent
			} else {
				status = http.StatusOK
			}
		}
		return v.Resource, status
	default:
		return result, http.StatusOK
	}
}

// errorResource maps a failure onto the error taxonomy; first match wins.
func (a *ResourceAPI) errorResource(err error) *Error {
	var notFound *NotFoundError
	var validation *ValidationError
	var permission *PermissionError

	switch {
	case errors.As(err, &notFound):
		return &Error{
			Status:  http.StatusNotFound,
			Code:    40400,
			Message: notFound.Message,
		}
	case errors.As(err, &validation):
		e := &Error{
			Status: http.StatusBadRequest,
			Code:   40000,
		}
		if len(validation.Fields) > 0 {
			e.Message = "Fields failed validation."
			e.Meta = make(map[string]any, len(validation.Fields))
			for field, messages := range validation.Fields {
				e.Meta[field] = messages
			}
		} else {
			e.Message = validation.Error()
		}
		return e
	case errors.As(err, &permission):
		return &Error{
			Status:  http.StatusForbidden,
			Code:    40300,
			Message: "Permission denied",
			Detail:  permission.Detail,
		}
	case errors.Is(err, ErrNotImplemented):
		return &Error{
			Status:  http.StatusNotImplemented,
			Code:    50100,
			Message: "This method has not been implemented.",
		}
	default:
		return a.handle500(err)
	}
}

// handle500 builds the response for an unhandled error. Outside debug mode
// the payload is sanitized to a generic message; in debug mode it carries
// the error text and, for panics, the stack trace.
func (a *ResourceAPI) handle500(err error) *Error {
	e := &Error{
		Status:  http.StatusInternalServerError,
		Code:    50000,
		Message: unknownErrorMessage,
	}
	if !a.debug {
		return e
	}

	e.Detail = err.Error()
	var pe *panicError
	if errors.As(err, &pe) {
		e.Meta = map[string]any{"trace": string(pe.stack)}
	}
	return e
}

// write encodes the resource with the negotiated codec. A nil resource
// yields an empty body regardless of status. An encoding failure falls
// back to an encoded 500 resource.
func (a *ResourceAPI) write(w http.ResponseWriter, codec Codec, resource any, status int) {
	if resource == nil {
		w.WriteHeader(status)
		return
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, resource); err != nil {
		e := a.handle500(err)
		buf.Reset()
		if encErr := codec.Encode(&buf, e); encErr != nil {
			http.Error(w, unknownErrorMessage, http.StatusInternalServerError)
			return
		}
		status = e.Status
	}

	w.Header().Set("Content-Type", codec.ContentType())
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck,gosec // best-effort after WriteHeader
}
