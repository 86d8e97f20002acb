package api

import (
	"context"
	"net/http"

	"github.com/stackit-qa/stackit-client/sdk/client"
)

// TagsAPI covers /tags/.
type TagsAPI struct {
	c *client.Client
}

// List returns every tag.
func (t *TagsAPI) List(ctx context.Context) ([]Object, error) {
	var out []Object
	err := t.c.DoJSON(ctx, http.MethodGet, "/tags/", nil, &out)
	return out, err
}
