// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package client provides easy and fast in-process access to the REST api

Instead of marshalling HTTP, the client talks directly to the mux router. The client
is perfectly suited for unit tests. Created with NewWithURL, the same client talks
to a remote server.
*/
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/access"
	"github.com/gamemakerclub/api-core/core/resource"
)

// Client provides easy access to the REST API.
type Client struct {
	router     *mux.Router
	httpClient *http.Client
	url        string
	auth       *access.Authorization
	ctx        context.Context

	defaultHeaders map[string]string
}

// NewWithRouter creates a client to make pseudo-REST requests to the backend,
// through the mux router
//
// WithAuthorization() adds an authorization to the request context.
// WithContext() specifies a different base context all together.
func NewWithRouter(router *mux.Router) Client {
	return Client{
		router:         router,
		defaultHeaders: map[string]string{},
	}
}

// NewWithURL creates a client to make REST requests to the backend
func NewWithURL(url string) Client {
	return Client{
		url:            url,
		httpClient:     &http.Client{Timeout: 20 * time.Second},
		defaultHeaders: map[string]string{},
	}
}

// WithHeader returns a new client with a default header added
func (c Client) WithHeader(key string, value string) Client {
	headers := make(map[string]string, len(c.defaultHeaders)+1)
	for k, v := range c.defaultHeaders {
		headers[k] = v
	}
	headers[key] = value
	c.defaultHeaders = headers
	return c
}

// WithBasicAuth returns a new client authenticating with email and password
func (c Client) WithBasicAuth(email, password string) Client {
	r := http.Request{Header: http.Header{}}
	r.SetBasicAuth(email, password)
	return c.WithHeader("Authorization", r.Header.Get("Authorization"))
}

// WithToken returns a new client authenticating with a bearer token
func (c Client) WithToken(token string) Client {
	return c.WithHeader("Authorization", "Bearer "+token)
}

// WithAuthorization returns a new client with specific authorizations
// (this works only directly against the mux router, for a normal client
// use WithToken())
func (c Client) WithAuthorization(auth *access.Authorization) Client {
	c.auth = auth
	return c
}

// WithContext returns a new client with specific request context
func (c Client) WithContext(ctx context.Context) Client {
	c.ctx = ctx
	return c
}

// Context returns the request context of the client
func (c Client) Context() context.Context {
	ctx := c.ctx
	if c.ctx == nil {
		ctx = context.Background()
	}
	if c.auth != nil {
		ctx = c.auth.ContextWithAuthorization(ctx)
	}
	return ctx
}

// StatusError is returned when the server answers with an unexpected status
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("handler returned wrong status code: got %v. Error: %s", e.Status, e.Message)
}

// do executes a request and returns status, header and body
func (c Client) do(method, path string, header map[string]string, body []byte) (int, http.Header, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	r, err := http.NewRequestWithContext(c.Context(), method, c.url+path, reader)
	if err != nil {
		return http.StatusBadRequest, nil, nil, err
	}
	for key, value := range c.defaultHeaders {
		r.Header.Set(key, value)
	}
	for key, value := range header {
		r.Header.Set(key, value)
	}

	if c.router != nil {
		rec := httptest.NewRecorder()
		c.router.ServeHTTP(rec, r)
		res := rec.Result()
		return res.StatusCode, res.Header, rec.Body.Bytes(), nil
	}
	res, err := c.httpClient.Do(r)
	if err != nil {
		return http.StatusInternalServerError, nil, nil, err
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	return res.StatusCode, res.Header, resBody, err
}

// message extracts the message of an error response
func message(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}

func decode(body []byte, result interface{}) error {
	if len(body) == 0 || result == nil {
		return nil
	}
	if raw, ok := result.(*[]byte); ok {
		*raw = body
		return nil
	}
	return json.Unmarshal(body, result)
}

func marshal(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if j, ok := body.([]byte); ok {
		return j, nil
	}
	return json.Marshal(body)
}

func (c Client) raw(method, path string, header map[string]string, body interface{}, result interface{}, expected ...int) (int, error) {
	j, err := marshal(body)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("%s to %s: %w", method, path, err)
	}
	status, _, resBody, err := c.do(method, path, header, j)
	if err != nil {
		return status, err
	}
	for _, e := range expected {
		if status == e {
			return status, decode(resBody, result)
		}
	}
	return status, &StatusError{Status: status, Message: message(resBody)}
}

// RawGet gets the resource from path. Expects http.StatusOK as response, otherwise it will
// flag an error. Returns the actual http status code.
//
// result can be map[string]interface{} or a raw *[]byte.
// result can be nil.
func (c Client) RawGet(path string, result interface{}) (int, error) {
	return c.raw(http.MethodGet, path, nil, nil, result, http.StatusOK)
}

// RawPost posts a resource to path. Expects http.StatusCreated as response, otherwise it will
// flag an error. Returns the actual http status code.
//
// body can also be a []byte, result can also be raw *[]byte.
// result can be nil.
func (c Client) RawPost(path string, body interface{}, result interface{}) (int, error) {
	return c.raw(http.MethodPost, path, nil, body, result, http.StatusCreated, http.StatusOK)
}

// RawPatch puts a patch to path. Expects http.StatusOK as response, otherwise it will
// flag an error. Returns the actual http status code.
func (c Client) RawPatch(path string, body interface{}, result interface{}) (int, error) {
	return c.raw(http.MethodPatch, path, nil, body, result, http.StatusOK, http.StatusNoContent)
}

// RawDelete deletes the resource at path. Expects http.StatusNoContent as response, otherwise it will
// flag an error.
func (c Client) RawDelete(path string) (int, error) {
	return c.raw(http.MethodDelete, path, nil, nil, nil, http.StatusNoContent)
}

// RawPutBlob puts a binary file to path with the given content type. Expects
// http.StatusNoContent or http.StatusOK as response.
func (c Client) RawPutBlob(path, contentType string, blob []byte) (int, error) {
	return c.raw(http.MethodPut, path, map[string]string{"Content-Type": contentType}, blob, nil,
		http.StatusNoContent, http.StatusOK)
}

// RawGetBlob gets a binary file from path. Returns the content type of the file.
func (c Client) RawGetBlob(path string, blob *[]byte) (int, string, error) {
	status, header, body, err := c.do(http.MethodGet, path, nil, nil)
	if err != nil {
		return status, "", err
	}
	if status != http.StatusOK {
		return status, "", &StatusError{Status: status, Message: message(body)}
	}
	*blob = body
	return status, header.Get("Content-Type"), nil
}

// Collection represents a collection of entities below a path
type Collection struct {
	client Client
	path   string
}

// Projects returns the projects of the team of the authenticated user
func (c Client) Projects() Collection {
	return Collection{client: c, path: "/v1/me/team/" + core.Plural("project")}
}

// Resources returns the resources of a project
func (c Client) Resources(projectID uuid.UUID) Collection {
	return Collection{client: c, path: c.Projects().Item(projectID).Path() + "/" + core.Plural("resource")}
}

// Path returns the path of the collection
func (r Collection) Path() string {
	return r.path
}

// Create creates an entity. Expects http.StatusCreated.
func (r Collection) Create(body interface{}, result interface{}) (int, error) {
	return r.client.RawPost(r.path, body, result)
}

// List lists all entities of the collection
func (r Collection) List(result interface{}) (int, error) {
	return r.client.RawGet(r.path, result)
}

// Item represents a single entity of a collection
type Item struct {
	client Client
	path   string
}

// Item returns the item with the given id
func (r Collection) Item(id uuid.UUID) Item {
	return Item{client: r.client, path: r.path + "/" + id.String()}
}

// Path returns the path of the item
func (r Item) Path() string {
	return r.path
}

// Read reads the item
func (r Item) Read(result interface{}) (int, error) {
	return r.client.RawGet(r.path, result)
}

// Patch patches the item
func (r Item) Patch(body interface{}, result interface{}) (int, error) {
	return r.client.RawPatch(r.path, body, result)
}

// Delete deletes the item
func (r Item) Delete() (int, error) {
	return r.client.RawDelete(r.path)
}

// ReadResource reads a resource item and rehydrates it. Fields missing in the
// response are left at their zero values.
func (r Item) ReadResource() (resource.Resource, int, error) {
	var object map[string]interface{}
	status, err := r.Read(&object)
	if err != nil {
		return nil, status, err
	}
	t, _ := object["type"].(string)
	res, err := resource.New(t)
	if err != nil {
		return nil, status, err
	}
	res.ClientFromAPIGet(object)
	return res, status, nil
}
