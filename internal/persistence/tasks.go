package persistence

import (
	"encoding/json"
	"fmt"
)

// Tasks maps a timeline task id to its completion flag.
type Tasks map[string]bool

func (s *Store) SaveTasks(tasks Tasks) error {
	if tasks == nil {
		tasks = Tasks{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return s.kv.Set(tasksKey, string(raw))
}

// LoadTasks never fails; unreadable data yields an empty set.
func (s *Store) LoadTasks() Tasks {
	raw, ok, err := s.kv.Get(tasksKey)
	if err != nil || !ok {
		return Tasks{}
	}
	var tasks Tasks
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil || tasks == nil {
		s.log.Warn("Ignoring corrupt timeline tasks", "error", err)
		return Tasks{}
	}
	return tasks
}

func (s *Store) SetTaskDone(taskID string, done bool) error {
	tasks := s.LoadTasks()
	if done {
		tasks[taskID] = true
	} else {
		delete(tasks, taskID)
	}
	return s.SaveTasks(tasks)
}
