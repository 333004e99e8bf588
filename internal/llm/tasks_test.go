package llm

import (
	"context"
	"strings"
	"testing"
)

func TestSuggestTasks_ParsesListAndCaps(t *testing.T) {
	mock := &MockClient{Response: "- Finish math worksheet\n\n* Call grandma\n• Pack gym bag\n- Clean desk"}

	tasks := SuggestTasks(context.Background(), mock, "I have a busy week")
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d (%v)", len(tasks), tasks)
	}
	if tasks[0] != "Finish math worksheet" || tasks[1] != "Call grandma" || tasks[2] != "Pack gym bag" {
		t.Fatalf("unexpected tasks %v", tasks)
	}

	call := mock.LastCall()
	if len(call) != 1 || !strings.Contains(call[0].Content, `"I have a busy week"`) {
		t.Fatalf("unexpected prompt %+v", call)
	}
}

func TestSuggestTasks_ApologyYieldsNoTasks(t *testing.T) {
	for _, reply := range []string{ApologyMessage, EmptyReplyMessage} {
		mock := &MockClient{Response: reply}
		if tasks := SuggestTasks(context.Background(), mock, "homework"); len(tasks) != 0 {
			t.Fatalf("expected no tasks for %q, got %v", reply, tasks)
		}
	}
}

func TestSuggestTasks_BlankInput(t *testing.T) {
	mock := &MockClient{Response: "- something"}
	if tasks := SuggestTasks(context.Background(), mock, "  "); len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %v", tasks)
	}
	if len(mock.Calls) != 0 {
		t.Fatalf("expected no completion call")
	}
}

func TestParseTaskList_NumberedAndFenced(t *testing.T) {
	tasks := parseTaskList("```\n1. Read chapter 4\n2) Email coach\n```")
	if len(tasks) != 2 || tasks[0] != "Read chapter 4" || tasks[1] != "Email coach" {
		t.Fatalf("unexpected tasks %v", tasks)
	}
}
