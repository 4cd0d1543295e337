package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

func newTestVideo(owner uuid.UUID, published bool) *model.Video {
	now := time.Now()
	return &model.Video{
		ID:          uuid.New(),
		OwnerID:     owner,
		Title:       "Gopher tricks",
		Description: "Channels and goroutines",
		VideoFile:   testAssetBaseURL + "/videos/a.mp4",
		Thumbnail:   testAssetBaseURL + "/thumbnails/a.png",
		Duration:    42,
		IsPublished: published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestVideoService_ListVideos(t *testing.T) {
	viewerID := uuid.New()
	ownerID := uuid.New()

	tests := []struct {
		name     string
		sortType string
		wantDesc bool
	}{
		{name: "default is descending", sortType: "", wantDesc: true},
		{name: "ascending", sortType: "asc", wantDesc: false},
		{name: "descending upper case", sortType: "DESC", wantDesc: true},
		{name: "unknown falls back to descending", sortType: "sideways", wantDesc: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery repository.VideoQuery
			repo := &mockVideoRepository{
				listFn: func(ctx context.Context, q repository.VideoQuery, page pagination.Params) (*pagination.Page[model.VideoSummary], error) {
					gotQuery = q
					return pagination.NewPage(page, []model.VideoSummary{{ID: uuid.New()}}, 1), nil
				},
			}
			svc := NewVideoService(repo, &mockAssetUploader{}, &mockMessageQueue{}, nil)

			page, err := svc.ListVideos(context.Background(), ListVideosInput{
				Viewer:   viewerID,
				OwnerID:  ownerID,
				Search:   "gopher",
				SortBy:   "views",
				SortType: tt.sortType,
				Page:     pagination.Default(),
			})
			if err != nil {
				t.Fatalf("ListVideos() error = %v", err)
			}
			if len(page.Items) != 1 {
				t.Errorf("len(Items) = %d, want 1", len(page.Items))
			}

			want := repository.VideoQuery{
				Viewer:     viewerID,
				OwnerID:    ownerID,
				Search:     "gopher",
				SortBy:     "views",
				Descending: tt.wantDesc,
			}
			if diff := cmp.Diff(want, gotQuery); diff != "" {
				t.Errorf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVideoService_PublishVideo(t *testing.T) {
	ownerID := uuid.New()
	uploadErr := errors.New("minio unavailable")

	validInput := func() PublishVideoInput {
		return PublishVideoInput{
			OwnerID:       ownerID,
			Title:         "  Gopher tricks ",
			Description:   "Channels",
			VideoPath:     "/tmp/uploads/clip.mp4",
			ThumbnailPath: "/tmp/uploads/thumb.png",
		}
	}

	tests := []struct {
		name        string
		input       func() PublishVideoInput
		setupMock   func(repo *mockVideoRepository, uploader *mockAssetUploader)
		wantErr     error
		wantUploads int
		wantCleanup []string
		checkFn     func(t *testing.T, video *model.Video)
	}{
		{
			name:  "published with thumbnail",
			input: validInput,
			setupMock: func(repo *mockVideoRepository, uploader *mockAssetUploader) {
				uploader.uploadFn = func(ctx context.Context, localPath string, kind repository.AssetKind) (*repository.UploadedAsset, error) {
					key := string(kind) + "/asset"
					asset := &repository.UploadedAsset{Key: key, URL: testAssetBaseURL + "/" + key}
					if kind == repository.AssetVideo {
						asset.Duration = 12.5
					}
					return asset, nil
				}
			},
			wantUploads: 2,
			checkFn: func(t *testing.T, video *model.Video) {
				if !video.IsPublished {
					t.Error("expected video to be published")
				}
				if video.Title != "Gopher tricks" {
					t.Errorf("Title = %q, want trimmed title", video.Title)
				}
				if video.Duration != 12.5 {
					t.Errorf("Duration = %v, want 12.5", video.Duration)
				}
				if video.VideoFile != testAssetBaseURL+"/videos/asset" {
					t.Errorf("VideoFile = %q", video.VideoFile)
				}
				if video.Thumbnail != testAssetBaseURL+"/thumbnails/asset" {
					t.Errorf("Thumbnail = %q", video.Thumbnail)
				}
			},
		},
		{
			name: "explicit draft",
			input: func() PublishVideoInput {
				in := validInput()
				in.Draft = true
				return in
			},
			wantUploads: 2,
			checkFn: func(t *testing.T, video *model.Video) {
				if video.IsPublished {
					t.Error("expected draft")
				}
			},
		},
		{
			name: "no thumbnail starts as draft",
			input: func() PublishVideoInput {
				in := validInput()
				in.ThumbnailPath = ""
				return in
			},
			wantUploads: 1,
			checkFn: func(t *testing.T, video *model.Video) {
				if video.IsPublished {
					t.Error("expected draft without thumbnail")
				}
				if video.Thumbnail != "" {
					t.Errorf("Thumbnail = %q, want empty", video.Thumbnail)
				}
			},
		},
		{
			name: "anonymous",
			input: func() PublishVideoInput {
				in := validInput()
				in.OwnerID = uuid.Nil
				return in
			},
			wantErr: model.ErrUnauthenticated,
		},
		{
			name: "missing video file",
			input: func() PublishVideoInput {
				in := validInput()
				in.VideoPath = ""
				return in
			},
			wantErr: model.ErrMissingVideoFile,
		},
		{
			name: "empty title is rejected before upload",
			input: func() PublishVideoInput {
				in := validInput()
				in.Title = "   "
				return in
			},
			wantErr: model.ErrEmptyTitle,
		},
		{
			name:  "video upload fails",
			input: validInput,
			setupMock: func(repo *mockVideoRepository, uploader *mockAssetUploader) {
				uploader.uploadFn = func(ctx context.Context, localPath string, kind repository.AssetKind) (*repository.UploadedAsset, error) {
					return nil, uploadErr
				}
				repo.createFn = func(ctx context.Context, video *model.Video) error {
					t.Error("Create must not be called")
					return nil
				}
			},
			wantErr:     uploadErr,
			wantUploads: 1,
		},
		{
			name:  "thumbnail upload fails",
			input: validInput,
			setupMock: func(repo *mockVideoRepository, uploader *mockAssetUploader) {
				uploader.uploadFn = func(ctx context.Context, localPath string, kind repository.AssetKind) (*repository.UploadedAsset, error) {
					if kind == repository.AssetThumbnail {
						return nil, uploadErr
					}
					return &repository.UploadedAsset{Key: "videos/clip.mp4", URL: testAssetBaseURL + "/videos/clip.mp4"}, nil
				}
				repo.createFn = func(ctx context.Context, video *model.Video) error {
					t.Error("Create must not be called")
					return nil
				}
			},
			wantErr:     uploadErr,
			wantUploads: 2,
			wantCleanup: []string{"videos/clip.mp4"},
		},
		{
			name:  "persistence fails",
			input: validInput,
			setupMock: func(repo *mockVideoRepository, uploader *mockAssetUploader) {
				repo.createFn = func(ctx context.Context, video *model.Video) error {
					return errors.New("connection reset")
				}
			},
			wantErr:     errors.New("connection reset"),
			wantUploads: 2,
			wantCleanup: []string{"videos/clip.mp4", "thumbnails/thumb.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockVideoRepository{}
			uploader := &mockAssetUploader{}
			queue := &mockMessageQueue{}
			if tt.setupMock != nil {
				tt.setupMock(repo, uploader)
			}

			svc := NewVideoService(repo, uploader, queue, nil)
			video, err := svc.PublishVideo(context.Background(), tt.input())

			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", tt.wantErr)
				}
				if !errors.Is(err, tt.wantErr) && !containsError(err, tt.wantErr.Error()) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := len(uploader.uploaded); got != tt.wantUploads {
				t.Errorf("uploads = %d, want %d", got, tt.wantUploads)
			}

			tasks := queue.tasks()
			if tt.wantCleanup == nil {
				if len(tasks) != 0 {
					t.Errorf("unexpected cleanup tasks: %+v", tasks)
				}
			} else {
				if len(tasks) != 1 {
					t.Fatalf("cleanup tasks = %d, want 1", len(tasks))
				}
				if diff := cmp.Diff(tt.wantCleanup, tasks[0].Keys); diff != "" {
					t.Errorf("cleanup keys mismatch (-want +got):\n%s", diff)
				}
				if tasks[0].Reason != ReasonPublishAborted {
					t.Errorf("Reason = %q, want %q", tasks[0].Reason, ReasonPublishAborted)
				}
			}

			if tt.checkFn != nil {
				tt.checkFn(t, video)
			}
		})
	}
}

func TestVideoService_GetVideo(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name            string
		viewer          uuid.UUID
		published       bool
		incrementErr    error
		recordWatchErr  error
		wantErr         error
		wantIncrement   bool
		wantRecordWatch bool
	}{
		{
			name:          "anonymous sees published video",
			viewer:        uuid.Nil,
			published:     true,
			wantIncrement: true,
		},
		{
			name:            "signed in viewer records history",
			viewer:          otherID,
			published:       true,
			wantIncrement:   true,
			wantRecordWatch: true,
		},
		{
			name:      "draft is hidden from other viewers",
			viewer:    otherID,
			published: false,
			wantErr:   repository.ErrVideoNotFound,
		},
		{
			name:      "draft is hidden from anonymous viewers",
			viewer:    uuid.Nil,
			published: false,
			wantErr:   repository.ErrVideoNotFound,
		},
		{
			name:            "owner sees own draft",
			viewer:          ownerID,
			published:       false,
			wantIncrement:   true,
			wantRecordWatch: true,
		},
		{
			name:          "view increment failure is surfaced",
			viewer:        uuid.Nil,
			published:     true,
			incrementErr:  errors.New("deadlock detected"),
			wantErr:       errors.New("deadlock detected"),
			wantIncrement: true,
		},
		{
			name:            "watch history failure is ignored",
			viewer:          otherID,
			published:       true,
			recordWatchErr:  errors.New("timeout"),
			wantIncrement:   true,
			wantRecordWatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videoID := uuid.New()
			var incremented, recorded bool

			repo := &mockVideoRepository{
				getDetailFn: func(ctx context.Context, id, viewer uuid.UUID) (*model.VideoDetail, error) {
					if viewer != tt.viewer {
						t.Errorf("viewer = %v, want %v", viewer, tt.viewer)
					}
					return &model.VideoDetail{
						ID:          id,
						OwnerID:     ownerID,
						Title:       "Gopher tricks",
						Views:       7,
						IsPublished: tt.published,
					}, nil
				},
				incrementViewsFn: func(ctx context.Context, id uuid.UUID) error {
					incremented = true
					return tt.incrementErr
				},
				recordWatchFn: func(ctx context.Context, userID, vid uuid.UUID) error {
					recorded = true
					if userID != tt.viewer || vid != videoID {
						t.Errorf("RecordWatch(%v, %v), want (%v, %v)", userID, vid, tt.viewer, videoID)
					}
					return tt.recordWatchErr
				},
			}

			svc := NewVideoService(repo, &mockAssetUploader{}, &mockMessageQueue{}, nil)
			detail, err := svc.GetVideo(context.Background(), videoID, tt.viewer)

			if incremented != tt.wantIncrement {
				t.Errorf("IncrementViews called = %v, want %v", incremented, tt.wantIncrement)
			}
			if recorded != tt.wantRecordWatch {
				t.Errorf("RecordWatch called = %v, want %v", recorded, tt.wantRecordWatch)
			}

			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", tt.wantErr)
				}
				if !errors.Is(err, tt.wantErr) && !containsError(err, tt.wantErr.Error()) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if detail.Views != 8 {
				t.Errorf("Views = %d, want 8", detail.Views)
			}
		})
	}
}

func TestVideoService_UpdateVideo(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name          string
		input         func(videoID uuid.UUID) UpdateVideoInput
		updateErr     error
		missing       bool
		wantErr       error
		wantUpdate    bool
		wantCleanup   []string
		wantReason    string
		wantThumbnail string
	}{
		{
			name: "title and description only",
			input: func(videoID uuid.UUID) UpdateVideoInput {
				return UpdateVideoInput{VideoID: videoID, Viewer: ownerID, Title: "New title", Description: "New description"}
			},
			wantUpdate:    true,
			wantThumbnail: testAssetBaseURL + "/thumbnails/a.png",
		},
		{
			name: "new thumbnail replaces the old one",
			input: func(videoID uuid.UUID) UpdateVideoInput {
				return UpdateVideoInput{
					VideoID:       videoID,
					Viewer:        ownerID,
					Title:         "New title",
					Description:   "New description",
					ThumbnailPath: "/tmp/uploads/b.png",
				}
			},
			wantUpdate:    true,
			wantCleanup:   []string{"thumbnails/a.png"},
			wantReason:    ReasonThumbnailReplaced,
			wantThumbnail: testAssetBaseURL + "/thumbnails/b.png",
		},
		{
			name: "failed update discards the new thumbnail",
			input: func(videoID uuid.UUID) UpdateVideoInput {
				return UpdateVideoInput{
					VideoID:       videoID,
					Viewer:        ownerID,
					Title:         "New title",
					Description:   "New description",
					ThumbnailPath: "/tmp/uploads/b.png",
				}
			},
			updateErr:   errors.New("connection reset"),
			wantErr:     errors.New("connection reset"),
			wantUpdate:  true,
			wantCleanup: []string{"thumbnails/b.png"},
			wantReason:  ReasonUpdateAborted,
		},
		{
			name: "not owner",
			input: func(videoID uuid.UUID) UpdateVideoInput {
				return UpdateVideoInput{VideoID: videoID, Viewer: uuid.New(), Title: "New title", Description: "New description"}
			},
			wantErr: model.ErrForbidden,
		},
		{
			name: "missing video is reported before ownership",
			input: func(videoID uuid.UUID) UpdateVideoInput {
				return UpdateVideoInput{VideoID: videoID, Viewer: uuid.New(), Title: "New title", Description: "New description"}
			},
			missing: true,
			wantErr: model.ErrNotFound,
		},
		{
			name: "empty description",
			input: func(videoID uuid.UUID) UpdateVideoInput {
				return UpdateVideoInput{VideoID: videoID, Viewer: ownerID, Title: "New title"}
			},
			wantErr: model.ErrInvalidArgument,
		},
		{
			name: "anonymous",
			input: func(videoID uuid.UUID) UpdateVideoInput {
				return UpdateVideoInput{VideoID: videoID, Title: "New title", Description: "New description"}
			},
			wantErr: model.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := newTestVideo(ownerID, true)
			var updated bool

			repo := &mockVideoRepository{
				getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Video, error) {
					if tt.missing {
						return nil, repository.ErrVideoNotFound
					}
					return existing, nil
				},
				updateFn: func(ctx context.Context, video *model.Video) error {
					updated = true
					return tt.updateErr
				},
			}
			queue := &mockMessageQueue{}

			svc := NewVideoService(repo, &mockAssetUploader{}, queue, nil)
			video, err := svc.UpdateVideo(context.Background(), tt.input(existing.ID))

			if updated != tt.wantUpdate {
				t.Errorf("Update called = %v, want %v", updated, tt.wantUpdate)
			}

			tasks := queue.tasks()
			if tt.wantCleanup == nil {
				if len(tasks) != 0 {
					t.Errorf("unexpected cleanup tasks: %+v", tasks)
				}
			} else {
				if len(tasks) != 1 {
					t.Fatalf("cleanup tasks = %d, want 1", len(tasks))
				}
				if diff := cmp.Diff(tt.wantCleanup, tasks[0].Keys); diff != "" {
					t.Errorf("cleanup keys mismatch (-want +got):\n%s", diff)
				}
				if tasks[0].Reason != tt.wantReason {
					t.Errorf("Reason = %q, want %q", tasks[0].Reason, tt.wantReason)
				}
			}

			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", tt.wantErr)
				}
				if !errors.Is(err, tt.wantErr) && !containsError(err, tt.wantErr.Error()) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if video.Title != "New title" || video.Description != "New description" {
				t.Errorf("got %q / %q", video.Title, video.Description)
			}
			if video.Thumbnail != tt.wantThumbnail {
				t.Errorf("Thumbnail = %q, want %q", video.Thumbnail, tt.wantThumbnail)
			}
		})
	}
}

func TestVideoService_DeleteVideo(t *testing.T) {
	ownerID := uuid.New()

	t.Run("owner deletes and schedules asset cleanup", func(t *testing.T) {
		video := newTestVideo(ownerID, true)
		var deletedID uuid.UUID
		repo := &mockVideoRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Video, error) { return video, nil },
			deleteFn: func(ctx context.Context, id uuid.UUID) error {
				deletedID = id
				return nil
			},
		}
		queue := &mockMessageQueue{}

		svc := NewVideoService(repo, &mockAssetUploader{}, queue, nil)
		if err := svc.DeleteVideo(context.Background(), video.ID, ownerID); err != nil {
			t.Fatalf("DeleteVideo() error = %v", err)
		}

		if deletedID != video.ID {
			t.Errorf("deleted %v, want %v", deletedID, video.ID)
		}
		want := []repository.AssetCleanupTask{{
			VideoID: video.ID,
			Keys:    []string{"videos/a.mp4", "thumbnails/a.png"},
			Reason:  ReasonVideoDeleted,
		}}
		if diff := cmp.Diff(want, queue.tasks()); diff != "" {
			t.Errorf("cleanup tasks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("foreign asset URLs are skipped", func(t *testing.T) {
		video := newTestVideo(ownerID, true)
		video.Thumbnail = "https://elsewhere.example/thumb.png"
		repo := &mockVideoRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Video, error) { return video, nil },
		}
		queue := &mockMessageQueue{}

		svc := NewVideoService(repo, &mockAssetUploader{}, queue, nil)
		if err := svc.DeleteVideo(context.Background(), video.ID, ownerID); err != nil {
			t.Fatalf("DeleteVideo() error = %v", err)
		}

		tasks := queue.tasks()
		if len(tasks) != 1 {
			t.Fatalf("cleanup tasks = %d, want 1", len(tasks))
		}
		if diff := cmp.Diff([]string{"videos/a.mp4"}, tasks[0].Keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("queue failure does not fail the delete", func(t *testing.T) {
		video := newTestVideo(ownerID, true)
		repo := &mockVideoRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Video, error) { return video, nil },
		}
		queue := &mockMessageQueue{
			publishCleanupTaskFn: func(ctx context.Context, task repository.AssetCleanupTask) error {
				return errors.New("channel closed")
			},
		}

		svc := NewVideoService(repo, &mockAssetUploader{}, queue, nil)
		if err := svc.DeleteVideo(context.Background(), video.ID, ownerID); err != nil {
			t.Fatalf("DeleteVideo() error = %v", err)
		}
	})

	t.Run("record deletion failure is surfaced and nothing is scheduled", func(t *testing.T) {
		video := newTestVideo(ownerID, true)
		repo := &mockVideoRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Video, error) { return video, nil },
			deleteFn: func(ctx context.Context, id uuid.UUID) error {
				return errors.New("foreign key violation")
			},
		}
		queue := &mockMessageQueue{}

		svc := NewVideoService(repo, &mockAssetUploader{}, queue, nil)
		if err := svc.DeleteVideo(context.Background(), video.ID, ownerID); err == nil {
			t.Fatal("expected error")
		}
		if len(queue.tasks()) != 0 {
			t.Error("no cleanup should be scheduled")
		}
	})

	t.Run("not owner", func(t *testing.T) {
		video := newTestVideo(ownerID, true)
		repo := &mockVideoRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Video, error) { return video, nil },
			deleteFn: func(ctx context.Context, id uuid.UUID) error {
				t.Error("Delete must not be called")
				return nil
			},
		}

		svc := NewVideoService(repo, &mockAssetUploader{}, &mockMessageQueue{}, nil)
		err := svc.DeleteVideo(context.Background(), video.ID, uuid.New())
		if !errors.Is(err, model.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("missing video", func(t *testing.T) {
		svc := NewVideoService(&mockVideoRepository{}, &mockAssetUploader{}, &mockMessageQueue{}, nil)
		err := svc.DeleteVideo(context.Background(), uuid.New(), uuid.New())
		if !errors.Is(err, repository.ErrVideoNotFound) {
			t.Errorf("expected ErrVideoNotFound, got %v", err)
		}
	})
}

func TestVideoService_TogglePublishStatus(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name       string
		viewer     uuid.UUID
		wantErr    error
		wantToggle bool
	}{
		{name: "owner toggles", viewer: ownerID, wantToggle: true},
		{name: "other user is forbidden", viewer: uuid.New(), wantErr: model.ErrForbidden},
		{name: "anonymous", viewer: uuid.Nil, wantErr: model.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := *newTestVideo(ownerID, true)
			var toggled bool
			repo := &mockVideoRepository{
				getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Video, error) {
					v := stored
					return &v, nil
				},
				togglePublishFn: func(ctx context.Context, id uuid.UUID) (*model.Video, error) {
					toggled = true
					stored.IsPublished = !stored.IsPublished
					v := stored
					return &v, nil
				},
			}

			svc := NewVideoService(repo, &mockAssetUploader{}, &mockMessageQueue{}, nil)
			got, err := svc.TogglePublishStatus(context.Background(), stored.ID, tt.viewer)

			if toggled != tt.wantToggle {
				t.Errorf("TogglePublish called = %v, want %v", toggled, tt.wantToggle)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.IsPublished {
				t.Error("expected video to become a draft")
			}
		})
	}
}

// containsError checks if the error message contains the expected substring.
func containsError(err error, substr string) bool {
	return err != nil && strings.Contains(err.Error(), substr)
}
