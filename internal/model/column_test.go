package model_test

import (
	"testing"

	"workspace/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestMarksCompleted(t *testing.T) {
	cases := []struct {
		title    string
		expected bool
	}{
		{"Done", true},
		{"done", true},
		{"DONE", true},
		{"Completed", true},
		{"Almost done", true},
		{"Completed this sprint", true},
		{"To Do", false},
		{"In Progress", false},
		{"Backlog", false},
		{"Review", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, model.MarksCompleted(tc.title), "title: %q", tc.title)
	}
}

func TestRoleCanManage(t *testing.T) {
	assert.True(t, model.RoleOwner.CanManage())
	assert.True(t, model.RoleAdmin.CanManage())
	assert.False(t, model.RoleEditor.CanManage())
	assert.False(t, model.RoleViewer.CanManage())
	assert.False(t, model.Role("").CanManage())
}
