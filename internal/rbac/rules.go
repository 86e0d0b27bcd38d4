package rbac

// Simple default policy. Authors build quizzes and cannot solve them;
// students solve quizzes and cannot mutate them.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"quiz:solve",
		"history:view",
		"user:change_password",
	},
	"author": {
		"quiz:view",
		"quiz:create",
		"quiz:edit",
		"quiz:delete",
		"history:view",
		"user:change_password",
	},
}
