package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stackit-qa/stackit-client/sdk/client"
)

// QuestionsAPI covers /questions/.
type QuestionsAPI struct {
	c *client.Client
}

// List returns questions, forwarding params (search, tag, ordering...) as the query string.
func (q *QuestionsAPI) List(ctx context.Context, params url.Values) ([]Object, error) {
	path := "/questions/"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out []Object
	err := q.c.DoJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Get returns one question.
func (q *QuestionsAPI) Get(ctx context.Context, id int) (Object, error) {
	var out Object
	err := q.c.DoJSON(ctx, http.MethodGet, itemPath("questions", id), nil, &out)
	return out, err
}

// Create posts a new question.
func (q *QuestionsAPI) Create(ctx context.Context, question Object) (Object, error) {
	var out Object
	err := q.c.DoJSON(ctx, http.MethodPost, "/questions/", question, &out)
	return out, err
}

// Update replaces a question.
func (q *QuestionsAPI) Update(ctx context.Context, id int, question Object) (Object, error) {
	var out Object
	err := q.c.DoJSON(ctx, http.MethodPut, itemPath("questions", id), question, &out)
	return out, err
}

// Delete removes a question.
func (q *QuestionsAPI) Delete(ctx context.Context, id int) error {
	return q.c.DoJSON(ctx, http.MethodDelete, itemPath("questions", id), nil, nil)
}
