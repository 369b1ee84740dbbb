package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/regdesk/regdesk/internal/core/domain"
)

type repoFake struct {
	docs map[string]*domain.Document

	created       *domain.Document
	createErr     error
	statusUpdates []domain.DocumentStatus
	lastError     string

	saveApplied  bool
	saveErr      error
	savedRes     domain.ExtractionResult
	savedRev     int
	savedCircular bool
}

func newRepoFake() *repoFake {
	return &repoFake{docs: map[string]*domain.Document{}, saveApplied: true}
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	if existing, ok := f.docs[doc.ID]; ok {
		doc.Revision = existing.Revision + 1
	}
	copyDoc := *doc
	f.created = &copyDoc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "fake get", errors.New(id))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *repoFake) List(context.Context) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (f *repoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	f.statusUpdates = append(f.statusUpdates, status)
	f.lastError = errMessage
	if doc, ok := f.docs[id]; ok {
		doc.Status = status
		doc.Error = errMessage
	}
	return nil
}

func (f *repoFake) SaveExtraction(_ context.Context, id string, revision int, res domain.ExtractionResult, circular bool) (bool, error) {
	if f.saveErr != nil {
		return false, f.saveErr
	}
	f.savedRes = res
	f.savedRev = revision
	f.savedCircular = circular
	return f.saveApplied, nil
}

type storageFake struct {
	savedKey  string
	savedBody string
	saveErr   error

	objects map[string]string
	openErr error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	body, ok := f.objects[key]
	if !ok {
		body = ""
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type queueFake struct {
	documentID string
	err        error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type extractorFake struct {
	res domain.ExtractionResult
	err error

	filename string
	mimeType string
}

func (f *extractorFake) Extract(_ context.Context, filename, mimeType string, _ io.Reader) (domain.ExtractionResult, error) {
	f.filename = filename
	f.mimeType = mimeType
	return f.res, f.err
}

type screenFake struct {
	verdict bool
	seen    string
}

func (f *screenFake) IsLikelyCircular(text string) bool {
	f.seen = text
	return f.verdict
}

type chatFake struct {
	resp domain.ChatResponse
	err  error

	captured domain.ChatRequest
}

func (f *chatFake) Complete(_ context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	f.captured = req
	return f.resp, f.err
}

type taskRepoFake struct {
	tasks     map[string]*domain.ComplianceTask
	createErr error
	updateErr error
	created   []domain.ComplianceTask
}

func newTaskRepoFake() *taskRepoFake {
	return &taskRepoFake{tasks: map[string]*domain.ComplianceTask{}}
}

func (f *taskRepoFake) Create(_ context.Context, task *domain.ComplianceTask) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyTask := *task
	f.created = append(f.created, copyTask)
	f.tasks[task.ID] = &copyTask
	return nil
}

func (f *taskRepoFake) GetByID(_ context.Context, id string) (*domain.ComplianceTask, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "fake get task", errors.New(id))
	}
	copyTask := *task
	return &copyTask, nil
}

func (f *taskRepoFake) List(context.Context) ([]domain.ComplianceTask, error) {
	out := make([]domain.ComplianceTask, 0, len(f.tasks))
	for _, task := range f.tasks {
		out = append(out, *task)
	}
	return out, nil
}

func (f *taskRepoFake) Update(_ context.Context, task *domain.ComplianceTask) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.tasks[task.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "fake update task", errors.New(task.ID))
	}
	copyTask := *task
	f.tasks[task.ID] = &copyTask
	return nil
}
