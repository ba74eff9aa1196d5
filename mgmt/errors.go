/*
Copyright The GhostDock Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package mgmt

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ghostdock/ghostdock-go/errdef"
)

// maxErrorBytes specifies the limit on how many response bytes are allowed
// in the server's error response.
const maxErrorBytes int64 = 8 * 1024 // 8 KiB

// ErrorResponse represents an error response of the management API.
// The body of a management API error is a single error object:
//
//	{"error": {"code": ..., "message": ...}}
type ErrorResponse struct {
	Method     string
	URL        *url.URL
	StatusCode int
	Code       string
	Message    string
}

// Error returns a error string describing the error.
func (err *ErrorResponse) Error() string {
	errmsg := err.Message
	if errmsg == "" {
		errmsg = http.StatusText(err.StatusCode)
	}
	if err.Code != "" {
		errmsg = fmt.Sprintf("%s: %s", err.Code, errmsg)
	}
	return fmt.Sprintf("%s %q: response status code %d: %s", err.Method, err.URL, err.StatusCode, errmsg)
}

// Unwrap maps a 404 response to errdef.ErrNotFound so that callers can test
// with errors.Is.
func (err *ErrorResponse) Unwrap() error {
	if err.StatusCode == http.StatusNotFound {
		return errdef.ErrNotFound
	}
	return nil
}

// parseErrorResponse parses the error returned by the management API.
func parseErrorResponse(resp *http.Response) error {
	resultErr := &ErrorResponse{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	lr := io.LimitReader(resp.Body, maxErrorBytes)
	if err := json.NewDecoder(lr).Decode(&body); err != nil {
		return resultErr
	}

	resultErr.Code = body.Error.Code
	resultErr.Message = body.Error.Message
	return resultErr
}
