// Package api wraps the StackIt Q&A endpoints on top of the authenticated client. Payloads
// are passed through as decoded JSON; the server owns their schema.
package api

import (
	"fmt"

	"github.com/stackit-qa/stackit-client/sdk/client"
)

// Object is a decoded JSON object.
type Object = map[string]any

// API groups the endpoint wrappers.
type API struct {
	Auth          *AuthAPI
	Questions     *QuestionsAPI
	Answers       *AnswersAPI
	Tags          *TagsAPI
	Votes         *VotesAPI
	Notifications *NotificationsAPI
}

// New builds every wrapper over c.
func New(c *client.Client) *API {
	return &API{
		Auth:          &AuthAPI{c: c},
		Questions:     &QuestionsAPI{c: c},
		Answers:       &AnswersAPI{c: c},
		Tags:          &TagsAPI{c: c},
		Votes:         &VotesAPI{c: c},
		Notifications: &NotificationsAPI{c: c},
	}
}

func itemPath(collection string, id int) string {
	return fmt.Sprintf("/%s/%d/", collection, id)
}
