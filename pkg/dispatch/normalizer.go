package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// Reserved field names that address the call rather than form its input.
const (
	FieldImpl   = "impl"
	FieldPath   = "path"
	FieldMethod = "method"
	FieldInput  = "input"
)

// defaultJSONMethod is used when a JSON body does not name a method.
const defaultJSONMethod = http.MethodPost

// Normalize converts an inbound HTTP request into a Request. The body is
// read up to maxBody bytes; larger bodies are rejected.
//
//   - multipart/form-data: impl, path and method are form fields; a file part
//     becomes a Bytes payload, otherwise the remaining fields become Fields
//   - application/json (or a +json type): the body holds impl, path, method
//     and input; an empty body falls back to the query string
//   - no content type: the query string is used, provided the body is empty
//
// Any other content type is rejected. Every failure is an
// *InvalidRequestError.
func Normalize(r *http.Request, maxBody int64) (*Request, error) {
	mediaType := ""
	var params map[string]string
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		mediaType, params, err = mime.ParseMediaType(ct)
		if err != nil {
			return nil, &InvalidRequestError{Reason: fmt.Sprintf("malformed content type %q", ct), Err: err}
		}
	}

	var (
		req *Request
		err error
	)
	switch {
	case mediaType == "multipart/form-data":
		req, err = fromMultipart(r, params["boundary"], maxBody)
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		req, err = fromJSON(r, maxBody)
	case mediaType == "":
		req, err = fromEmptyBody(r, maxBody)
	default:
		return nil, invalid("unsupported content type %q", mediaType)
	}
	if err != nil {
		return nil, err
	}

	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func readBody(r *http.Request, maxBody int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBody))
	if err != nil {
		return nil, bodyError(err, maxBody)
	}
	return body, nil
}

func bodyError(err error, maxBody int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &InvalidRequestError{Reason: fmt.Sprintf("request body exceeds %d bytes", maxBody), Err: err}
	}
	return &InvalidRequestError{Reason: "failed to read request body", Err: err}
}

func fromEmptyBody(r *http.Request, maxBody int64) (*Request, error) {
	body, err := readBody(r, maxBody)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) > 0 {
		return nil, invalid("request body without content type")
	}
	return fromQuery(r.URL.Query(), r.Method), nil
}

func fromJSON(r *http.Request, maxBody int64) (*Request, error) {
	body, err := readBody(r, maxBody)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fromQuery(r.URL.Query(), r.Method), nil
	}

	if !gjson.ValidBytes(body) {
		return nil, invalid("malformed JSON body")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, invalid("JSON body must be an object")
	}

	req := &Request{Method: defaultJSONMethod}
	for field, dst := range map[string]*string{FieldImpl: &req.Impl, FieldPath: &req.Path, FieldMethod: &req.Method} {
		v := doc.Get(field)
		switch v.Type {
		case gjson.Null:
			// absent or null keeps the default
		case gjson.String:
			*dst = v.Str
		default:
			return nil, invalid("field %q must be a string", field)
		}
	}

	input := doc.Get(FieldInput)
	switch {
	case !input.Exists() || input.Type == gjson.Null:
		req.Input = Fields{}
	case input.IsObject():
		fields, err := decodeFields(input.Raw)
		if err != nil {
			return nil, err
		}
		req.Input = fields
	default:
		req.Input = &Bytes{ContentType: "application/json", Data: []byte(input.Raw)}
	}
	return req, nil
}

// decodeFields keeps numbers as json.Number so integers beyond float64
// precision are forwarded with their original digits.
func decodeFields(raw string) (Fields, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	fields := Fields{}
	if err := dec.Decode(&fields); err != nil {
		return nil, &InvalidRequestError{Reason: "malformed input object", Err: err}
	}
	return fields, nil
}

// fromQuery reads impl, path and method from the query string; every other
// parameter becomes an input field. Repeated parameters keep all values.
func fromQuery(q url.Values, inboundMethod string) *Request {
	req := &Request{
		Impl:   q.Get(FieldImpl),
		Path:   q.Get(FieldPath),
		Method: q.Get(FieldMethod),
		Input:  formFields(q),
	}
	if req.Method == "" {
		req.Method = inboundMethod
	}
	return req
}

func formFields(values map[string][]string) Fields {
	fields := Fields{}
	for k, vs := range values {
		if k == FieldImpl || k == FieldPath || k == FieldMethod || len(vs) == 0 {
			continue
		}
		if len(vs) == 1 {
			fields[k] = vs[0]
		} else {
			fields[k] = append([]string(nil), vs...)
		}
	}
	return fields
}

// fromMultipart reads the parts one at a time. A file part is buffered, up to
// maxBody, so that a retried call can resend it.
func fromMultipart(r *http.Request, boundary string, maxBody int64) (*Request, error) {
	if boundary == "" {
		return nil, invalid("multipart body without boundary")
	}
	if r.Body == nil {
		return nil, invalid("multipart data is empty")
	}
	mr := multipart.NewReader(http.MaxBytesReader(nil, r.Body, maxBody), boundary)

	form := map[string][]string{}
	var file *Bytes
	parts := 0

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, multipartError(err, maxBody)
		}
		parts++

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, multipartError(err, maxBody)
		}

		if part.FileName() == "" {
			name := part.FormName()
			form[name] = append(form[name], string(data))
			continue
		}
		if file != nil {
			return nil, invalid("multiple file parts")
		}
		ct := part.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		file = &Bytes{
			Name:        part.FormName(),
			Filename:    part.FileName(),
			ContentType: ct,
			Data:        data,
		}
	}

	if parts == 0 {
		return nil, invalid("multipart data is empty")
	}

	req := &Request{
		Impl:   first(form[FieldImpl]),
		Path:   first(form[FieldPath]),
		Method: first(form[FieldMethod]),
	}
	if req.Method == "" {
		req.Method = r.Method
	}

	rest := formFields(form)
	if file == nil {
		req.Input = rest
		return req, nil
	}

	file.Form = map[string][]string{}
	for k, vs := range form {
		if k != FieldImpl && k != FieldPath && k != FieldMethod {
			file.Form[k] = vs
		}
	}
	req.Input = file
	return req, nil
}

func multipartError(err error, maxBody int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return bodyError(err, maxBody)
	}
	return &InvalidRequestError{Reason: "malformed multipart body", Err: err}
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
