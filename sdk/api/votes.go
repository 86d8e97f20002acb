package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stackit-qa/stackit-client/sdk/client"
)

// VotesAPI covers /votes/.
type VotesAPI struct {
	c *client.Client
}

// Vote casts value (1 or -1) on an answer.
func (v *VotesAPI) Vote(ctx context.Context, answerID, value int) (Object, error) {
	if value != 1 && value != -1 {
		return nil, fmt.Errorf("api: vote value must be 1 or -1, got %d", value)
	}
	var out Object
	err := v.c.DoJSON(ctx, http.MethodPost, "/votes/", Object{"answer": answerID, "value": value}, &out)
	return out, err
}
