package criteria

import (
	"github.com/taskgate/taskgate/service/dao"
)

// FilterByTaskType evaluates list parameters against a record's task type.
// With no parameters every record matches.
func FilterByTaskType(taskType string, parameters []*dao.Parameter) bool {
	switch len(parameters) {
	case 0:
		return true
	case 1:
		if parameters[0].Name == "TaskType" {
			switch actual := parameters[0].Value.(type) {
			case string:
				return taskType == actual
			case []string:
				for _, s := range actual {
					if taskType == s {
						return true
					}
				}
				return false
			}
		}
	}
	return true
}
