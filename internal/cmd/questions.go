package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/stackit-qa/stackit-client/sdk/api"
)

// DoListQuestions prints questions, optionally filtered by a search term.
func DoListQuestions(ctx context.Context, rt *Runtime, search string, options *Options) error {
	params := url.Values{}
	if search = strings.TrimSpace(search); search != "" {
		params.Set("search", search)
	}
	questions, err := rt.API.Questions.List(ctx, params)
	if err != nil {
		return err
	}
	out := options.out()
	if len(questions) == 0 {
		_, _ = fmt.Fprintln(out, "No questions")
		return nil
	}
	for _, q := range questions {
		answers, _ := q["answers"].([]any)
		_, _ = fmt.Fprintf(out, "#%v %v [%s] (%d answers)\n", q["id"], q["title"], tagNames(q["tags"]), len(answers))
	}
	return nil
}

// DoShowQuestion prints a question and its answers.
func DoShowQuestion(ctx context.Context, rt *Runtime, id int, options *Options) error {
	question, err := rt.API.Questions.Get(ctx, id)
	if err != nil {
		return err
	}
	answers, err := rt.API.Answers.List(ctx, id)
	if err != nil {
		return err
	}
	out := options.out()
	_, _ = fmt.Fprintf(out, "#%v %v\nby %v [%s]\n\n%v\n", question["id"], question["title"], question["author"], tagNames(question["tags"]), question["body"])
	for _, a := range answers {
		marker := " "
		if accepted, _ := a["is_accepted"].(bool); accepted {
			marker = "*"
		}
		_, _ = fmt.Fprintf(out, "\n%s answer #%v by %v\n%v\n", marker, a["id"], a["author"], a["body"])
	}
	return nil
}

// DoAsk posts a new question.
func DoAsk(ctx context.Context, rt *Runtime, title, body string, tags []string, options *Options) error {
	tagObjects := make([]api.Object, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tagObjects = append(tagObjects, api.Object{"name": tag})
		}
	}
	created, err := rt.API.Questions.Create(ctx, api.Object{"title": title, "body": body, "tags": tagObjects})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(options.out(), "Question #%v created\n", created["id"])
	return nil
}

// DoDeleteQuestion removes a question.
func DoDeleteQuestion(ctx context.Context, rt *Runtime, id int, options *Options) error {
	if err := rt.API.Questions.Delete(ctx, id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(options.out(), "Question #%d deleted\n", id)
	return nil
}

// DoTags prints every tag name.
func DoTags(ctx context.Context, rt *Runtime, options *Options) error {
	tags, err := rt.API.Tags.List(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, fmt.Sprint(t["name"]))
	}
	_, _ = fmt.Fprintln(options.out(), strings.Join(names, ", "))
	return nil
}

func tagNames(raw any) string {
	items, _ := raw.([]any)
	names := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			names = append(names, fmt.Sprint(v["name"]))
		default:
			names = append(names, fmt.Sprint(v))
		}
	}
	return strings.Join(names, ", ")
}
