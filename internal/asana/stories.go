package asana

import "context"

// CommentsByTask fetches the task's stories and keeps only comments.
func CommentsByTask(ctx context.Context, task *Task, client Client) ([]*Story, error) {
	stories, err := client.StoriesByTask(ctx, task)
	if err != nil {
		return nil, err
	}
	var comments []*Story
	for _, story := range stories {
		if story.ResourceSubtype == StoryCommentAdded {
			comments = append(comments, story)
		}
	}
	return comments, nil
}
