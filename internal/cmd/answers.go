package cmd

import (
	"context"
	"fmt"

	"github.com/stackit-qa/stackit-client/sdk/api"
)

// DoAnswer posts an answer to a question.
func DoAnswer(ctx context.Context, rt *Runtime, questionID int, body string, options *Options) error {
	created, err := rt.API.Answers.Create(ctx, api.Object{"question": questionID, "body": body})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(options.out(), "Answer #%v posted to question #%d\n", created["id"], questionID)
	return nil
}

// DoAccept accepts an answer on one of the caller's questions.
func DoAccept(ctx context.Context, rt *Runtime, answerID int, options *Options) error {
	res, err := rt.API.Answers.Accept(ctx, answerID)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(options.out(), "Answer #%d: %v\n", answerID, res["status"])
	return nil
}

// DoVote casts an up (1) or down (-1) vote on an answer.
func DoVote(ctx context.Context, rt *Runtime, answerID, value int, options *Options) error {
	if _, err := rt.API.Votes.Vote(ctx, answerID, value); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(options.out(), "Voted %+d on answer #%d\n", value, answerID)
	return nil
}
