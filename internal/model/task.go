package model

type Task struct {
	ID          int64  `json:"id"`
	TaskName    string `json:"task_name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	UserID      int64  `json:"user_id"`
}

type TaskRequest struct {
	TaskName    string `json:"task_name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type TaskResponse struct {
	Message string `json:"message"`
	Task    string `json:"task"`
}
