package model

import "time"

// DisplayPointer указывает на единственное опубликованное сообщение с расписанием недели
type DisplayPointer struct {
	ArtifactID  int       `json:"artifact_id"`  // message id
	ContainerID int64     `json:"container_id"` // chat id
	UpdatedAt   time.Time `json:"updated_at"`
}
