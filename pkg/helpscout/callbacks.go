package helpscout

import (
	"context"
	"encoding/json"
	"net/url"
)

// ErrorCallback receives the error of a failed call.
type ErrorCallback func(err error)

// CallbackClient wraps a Client for callers that prefer completion callbacks.
// Every method still returns its result; on failure onError receives the
// same error value that is returned. Nil callbacks are skipped.
type CallbackClient struct {
	client Client
}

// NewCallbackClient wraps client.
func NewCallbackClient(client Client) *CallbackClient {
	return &CallbackClient{client: client}
}

func notify[T any](value T, err error, onError ErrorCallback, onSuccess func(T)) (T, error) {
	if err != nil {
		if onError != nil {
			onError(err)
		}

		return value, err
	}

	if onSuccess != nil {
		onSuccess(value)
	}

	return value, nil
}

func notifyDone(err error, onError ErrorCallback, onSuccess func()) error {
	_, err = notify(struct{}{}, err, onError, func(struct{}) {
		if onSuccess != nil {
			onSuccess()
		}
	})

	return err
}

// Create creates a resource and reports its id.
func (c *CallbackClient) Create(ctx context.Context, objectType string, data interface{}, parent *Parent, onError ErrorCallback, onSuccess func(id string)) (string, error) {
	id, err := c.client.Create(ctx, objectType, data, parent)

	return notify(id, err, onError, onSuccess)
}

// Get reads a resource.
func (c *CallbackClient) Get(ctx context.Context, objectType, id string, opts *GetOptions, onError ErrorCallback, onSuccess func(json.RawMessage)) (json.RawMessage, error) {
	raw, err := c.client.Get(ctx, objectType, id, opts)

	return notify(raw, err, onError, onSuccess)
}

// List lists every resource of objectType.
func (c *CallbackClient) List(ctx context.Context, objectType string, query url.Values, parent *Parent, onError ErrorCallback, onSuccess func([]json.RawMessage)) ([]json.RawMessage, error) {
	items, err := c.client.List(ctx, objectType, query, parent)

	return notify(items, err, onError, onSuccess)
}

// UpdatePut replaces a resource.
func (c *CallbackClient) UpdatePut(ctx context.Context, objectType, id string, data interface{}, parent *Parent, onError ErrorCallback, onSuccess func()) error {
	return notifyDone(c.client.UpdatePut(ctx, objectType, id, data, parent), onError, onSuccess)
}

// UpdatePatch partially updates a resource.
func (c *CallbackClient) UpdatePatch(ctx context.Context, objectType, id string, data interface{}, parent *Parent, onError ErrorCallback, onSuccess func()) error {
	return notifyDone(c.client.UpdatePatch(ctx, objectType, id, data, parent), onError, onSuccess)
}

// Delete removes a resource.
func (c *CallbackClient) Delete(ctx context.Context, objectType, id string, onError ErrorCallback, onSuccess func()) error {
	return notifyDone(c.client.Delete(ctx, objectType, id), onError, onSuccess)
}

// AddNoteToConversation adds a note and reports its id.
func (c *CallbackClient) AddNoteToConversation(ctx context.Context, conversationID, text string, onError ErrorCallback, onSuccess func(id string)) (string, error) {
	id, err := c.client.AddNoteToConversation(ctx, conversationID, text)

	return notify(id, err, onError, onSuccess)
}

// GetAccessToken returns a valid token.
func (c *CallbackClient) GetAccessToken(ctx context.Context, onError ErrorCallback, onSuccess func(*Token)) (*Token, error) {
	token, err := c.client.GetAccessToken(ctx)

	return notify(token, err, onError, onSuccess)
}

// RawAPI performs an authenticated request against an arbitrary URL.
func (c *CallbackClient) RawAPI(ctx context.Context, method, rawURL string, data interface{}, onError ErrorCallback, onSuccess func(*Response)) (*Response, error) {
	resp, err := c.client.RawAPI(ctx, method, rawURL, data)

	return notify(resp, err, onError, onSuccess)
}
