package task

import (
	"GoLocker/internal/mq"
	"GoLocker/internal/repo"
	"GoLocker/internal/storage"
	"GoLocker/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ReclaimMessage is the payload sent to the worker.
type ReclaimMessage struct {
	TaskID  uint64 `json:"task_id"`
	Attempt int    `json:"attempt"`
}

// CreateReclaimTask persists an orphaned-blob cleanup task and enqueues it.
func CreateReclaimTask(bucket, object, origin string) (*model.ReclaimTask, error) {
	task := &model.ReclaimTask{
		Bucket:     bucket,
		ObjectName: object,
		Origin:     origin,
		Status:     "pending",
	}
	if err := repo.Db.Create(task).Error; err != nil {
		return nil, err
	}
	msg := ReclaimMessage{TaskID: task.ID, Attempt: 0}
	body, err := json.Marshal(msg)
	if err != nil {
		markReclaimTaskFailed(task.ID, err)
		return nil, err
	}
	publisher, err := mq.GetPublisher()
	if err != nil {
		markReclaimTaskFailed(task.ID, err)
		return nil, err
	}
	if err := publisher.PublishTask(context.Background(), body); err != nil {
		markReclaimTaskFailed(task.ID, err)
		return nil, err
	}
	return task, nil
}

// EnqueueReclaim adapts CreateReclaimTask to the lifecycle manager's
// reclaim hook.
func EnqueueReclaim(ctx context.Context, bucket, object, origin string) error {
	_, err := CreateReclaimTask(bucket, object, origin)
	return err
}

// ProcessReclaimTask deletes the orphaned blob a task points at. The key is
// re-checked against the metadata store first: a record referencing it means
// the blob is live after all and the task is skipped, not failed.
func ProcessReclaimTask(ctx context.Context, taskID uint64) error {
	var task model.ReclaimTask
	if err := repo.Db.Where("id = ?", taskID).First(&task).Error; err != nil {
		return err
	}
	if task.Status == "done" || task.Status == "skipped" {
		return nil
	}
	res := repo.Db.Model(&model.ReclaimTask{}).
		Where("id = ? AND status IN ?", taskID, []string{"pending", "retrying"}).
		Updates(map[string]interface{}{
			"status":    "running",
			"error_msg": "",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	if repo.Files == nil {
		return errors.New("file store not initialized")
	}
	referenced, err := repo.Files.ExistsByStorageKey(ctx, task.ObjectName)
	if err != nil {
		return err
	}
	finishedAt := time.Now()
	if referenced {
		return repo.Db.Model(&task).Updates(map[string]interface{}{
			"status":      "skipped",
			"finished_at": &finishedAt,
		}).Error
	}

	if storage.Default == nil {
		return fmt.Errorf("storage not initialized")
	}
	if err := storage.Default.RemoveObject(ctx, task.Bucket, task.ObjectName); err != nil {
		return err
	}
	return repo.Db.Model(&task).Updates(map[string]interface{}{
		"status":      "done",
		"finished_at": &finishedAt,
	}).Error
}

func markReclaimTaskFailed(taskID uint64, err error) {
	finishedAt := time.Now()
	_ = repo.Db.Model(&model.ReclaimTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":      "failed",
			"error_msg":   err.Error(),
			"finished_at": &finishedAt,
		}).Error
}
