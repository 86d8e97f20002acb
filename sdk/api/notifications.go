package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stackit-qa/stackit-client/sdk/client"
	"github.com/tidwall/gjson"
)

// NotificationsAPI covers /notifications/.
type NotificationsAPI struct {
	c *client.Client
}

// List returns the caller's notifications.
func (n *NotificationsAPI) List(ctx context.Context) ([]Object, error) {
	var out []Object
	err := n.c.DoJSON(ctx, http.MethodGet, "/notifications/", nil, &out)
	return out, err
}

// UnreadCount returns the number of unread notifications.
func (n *NotificationsAPI) UnreadCount(ctx context.Context) (int, error) {
	body, err := n.c.Send(ctx, http.MethodGet, "/notifications/unread-count/", nil)
	if err != nil {
		return 0, err
	}
	count := gjson.GetBytes(body, "unread_count")
	if !count.Exists() {
		return 0, fmt.Errorf("api: unread count missing from response")
	}
	return int(count.Int()), nil
}

// MarkRead marks one notification as read.
func (n *NotificationsAPI) MarkRead(ctx context.Context, id int) error {
	_, err := n.c.Send(ctx, http.MethodPost, fmt.Sprintf("/notifications/%d/mark_read/", id), nil)
	return err
}
