package query

// AuthUserKey is the key of the current-user profile.
var AuthUserKey = Key{"authUser"}

// AllTasksKey is the key of a workspace's task list.
func AllTasksKey(workspaceID string) Key {
	return Key{"all-tasks", workspaceID}
}

// MembersKey is the key of a workspace's member list.
func MembersKey(workspaceID string) Key {
	return Key{"workspace-members", workspaceID}
}
