package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/stackit-qa/stackit-client/sdk/client"
)

// AnswersAPI covers /answers/.
type AnswersAPI struct {
	c *client.Client
}

// List returns the answers to one question.
func (a *AnswersAPI) List(ctx context.Context, questionID int) ([]Object, error) {
	query := url.Values{"question": {strconv.Itoa(questionID)}}
	var out []Object
	err := a.c.DoJSON(ctx, http.MethodGet, "/answers/?"+query.Encode(), nil, &out)
	return out, err
}

// Create posts an answer. The payload names the question it belongs to.
func (a *AnswersAPI) Create(ctx context.Context, answer Object) (Object, error) {
	var out Object
	err := a.c.DoJSON(ctx, http.MethodPost, "/answers/", answer, &out)
	return out, err
}

// Accept marks an answer as accepted. Only the question owner may do this; the server
// answers 403 otherwise.
func (a *AnswersAPI) Accept(ctx context.Context, answerID int) (Object, error) {
	var out Object
	err := a.c.DoJSON(ctx, http.MethodPost, fmt.Sprintf("/answers/%d/accept/", answerID), nil, &out)
	return out, err
}
