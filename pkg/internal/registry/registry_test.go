package registry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/soumik183/instavault/pkg/internal/model"
	"github.com/soumik183/instavault/pkg/internal/registry"
	"github.com/soumik183/instavault/pkg/internal/storage/db"
)

const testUser = "test-user@example.com"

// openTestStore 打开内存 SQLite 并迁移出测试用的注册表.
func openTestStore(t *testing.T) *registry.Store {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// 内存库按连接隔离，收窄到单连接
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&model.StorageAccount{}, &model.FileRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return registry.NewStore(&db.Client{DB: gdb})
}

func insertAccount(t *testing.T, store *registry.Store, account model.StorageAccount) model.StorageAccount {
	t.Helper()

	if account.UserID == "" {
		account.UserID = testUser
	}

	if account.Status == "" {
		account.Status = model.StatusDisconnected
	}

	if err := store.InsertAccount(t.Context(), &account); err != nil {
		t.Fatalf("insert account: %v", err)
	}

	return account
}

// TestInsertAccountClearsPrimary 插入新主账号时旧主标记被清除.
func TestInsertAccountClearsPrimary(t *testing.T) {
	store := openTestStore(t)

	first := insertAccount(t, store, model.StorageAccount{Name: "first", IsPrimary: true})
	second := insertAccount(t, store, model.StorageAccount{Name: "second", IsPrimary: true})

	accounts, err := store.ListForUser(t.Context(), testUser)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	for _, a := range accounts {
		switch a.ID {
		case first.ID:
			if a.IsPrimary {
				t.Error("first account should have lost the primary flag")
			}
		case second.ID:
			if !a.IsPrimary {
				t.Error("second account should be primary")
			}
		}
	}
}

// TestSetPrimary 两次顺序写：先清全部主标记，再设置指定账号.
func TestSetPrimary(t *testing.T) {
	store := openTestStore(t)

	a := insertAccount(t, store, model.StorageAccount{Name: "a", IsPrimary: true})
	b := insertAccount(t, store, model.StorageAccount{Name: "b"})

	if err := store.SetPrimary(t.Context(), testUser, b.ID); err != nil {
		t.Fatalf("set primary: %v", err)
	}

	gotA, _ := store.GetAccount(t.Context(), a.ID)
	gotB, _ := store.GetAccount(t.Context(), b.ID)

	if gotA.IsPrimary || !gotB.IsPrimary {
		t.Errorf("expected only b primary, got a=%v b=%v", gotA.IsPrimary, gotB.IsPrimary)
	}

	// 不存在的账号
	if err := store.SetPrimary(t.Context(), testUser, "ghost"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestUpdateAccountNotFound 零行命中映射为 ErrNotFound.
func TestUpdateAccountNotFound(t *testing.T) {
	store := openTestStore(t)

	err := store.UpdateAccount(t.Context(), "ghost", map[string]any{"name": "x"})
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestUpdateStatus 探测结果回写状态、错误信息与检查时间.
func TestUpdateStatus(t *testing.T) {
	store := openTestStore(t)

	a := insertAccount(t, store, model.StorageAccount{Name: "a"})

	if err := store.UpdateStatus(t.Context(), a.ID, model.StatusError, "connection refused"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := store.GetAccount(t.Context(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Status != model.StatusError || got.ErrorMessage != "connection refused" {
		t.Errorf("unexpected status row: %+v", got)
	}

	if got.LastChecked == nil {
		t.Error("last_checked should be set")
	}
}

// TestRefreshUsage 计数器从文件元数据重算，软删除的文件不计入.
func TestRefreshUsage(t *testing.T) {
	store := openTestStore(t)

	a := insertAccount(t, store, model.StorageAccount{Name: "a", StorageLimit: 1 << 30})

	for i, size := range []int64{100, 200, 300} {
		record := model.FileRecord{
			UserID:       testUser,
			AccountID:    a.ID,
			FilePath:     testUser + "/" + string(rune('a'+i)),
			FileName:     "f",
			OriginalName: "f",
			FileType:     model.TypeOther,
			FileSize:     size,
			UploadedAt:   time.Now().UTC(),
		}
		if err := store.InsertFile(t.Context(), &record); err != nil {
			t.Fatalf("insert file: %v", err)
		}

		// 软删最后一个
		if i == 2 {
			if err := store.SoftDeleteFile(t.Context(), record.ID); err != nil {
				t.Fatalf("soft delete: %v", err)
			}
		}
	}

	if err := store.RefreshUsage(t.Context(), a.ID); err != nil {
		t.Fatalf("refresh usage: %v", err)
	}

	got, err := store.GetAccount(t.Context(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.StorageUsed != 300 {
		t.Errorf("expected storage_used 300, got %d", got.StorageUsed)
	}

	if got.FilesCount != 2 {
		t.Errorf("expected files_count 2, got %d", got.FilesCount)
	}
}

// TestDeleteAccountKeepsFileRecords 删除账号后其文件元数据保留（孤儿记录）.
func TestDeleteAccountKeepsFileRecords(t *testing.T) {
	store := openTestStore(t)

	a := insertAccount(t, store, model.StorageAccount{Name: "a"})

	record := model.FileRecord{
		UserID:       testUser,
		AccountID:    a.ID,
		FilePath:     testUser + "/keep.jpg",
		FileName:     "keep.jpg",
		OriginalName: "keep.jpg",
		FileType:     model.TypePhoto,
		FileSize:     10,
		UploadedAt:   time.Now().UTC(),
	}
	if err := store.InsertFile(t.Context(), &record); err != nil {
		t.Fatalf("insert file: %v", err)
	}

	if err := store.DeleteAccount(t.Context(), a.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	if _, err := store.GetAccount(t.Context(), a.ID); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("account should be gone, got %v", err)
	}

	got, err := store.GetFile(t.Context(), testUser, record.ID)
	if err != nil {
		t.Fatalf("file record should survive account deletion: %v", err)
	}

	if got.AccountID != a.ID {
		t.Errorf("orphan record should keep its account id, got %s", got.AccountID)
	}
}

// TestListFilesFilterAndSort 过滤与白名单排序.
func TestListFilesFilterAndSort(t *testing.T) {
	store := openTestStore(t)

	a := insertAccount(t, store, model.StorageAccount{Name: "a"})

	seed := []struct {
		name     string
		fileType model.FileType
		size     int64
		favorite bool
	}{
		{"one.jpg", model.TypePhoto, 300, true},
		{"two.mp4", model.TypeVideo, 100, false},
		{"three.jpg", model.TypePhoto, 200, false},
	}

	for _, sd := range seed {
		record := model.FileRecord{
			UserID:       testUser,
			AccountID:    a.ID,
			FilePath:     testUser + "/" + sd.name,
			FileName:     sd.name,
			OriginalName: sd.name,
			FileType:     sd.fileType,
			FileSize:     sd.size,
			IsFavorite:   sd.favorite,
			UploadedAt:   time.Now().UTC(),
		}
		if err := store.InsertFile(t.Context(), &record); err != nil {
			t.Fatalf("insert %s: %v", sd.name, err)
		}
	}

	photos, err := store.ListFiles(t.Context(), testUser, registry.FileFilter{Type: model.TypePhoto})
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}

	if len(photos) != 2 {
		t.Errorf("expected 2 photos, got %d", len(photos))
	}

	favorites, err := store.ListFiles(t.Context(), testUser, registry.FileFilter{Favorite: true})
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}

	if len(favorites) != 1 || favorites[0].FileName != "one.jpg" {
		t.Errorf("expected only one.jpg, got %+v", favorites)
	}

	bySize, err := store.ListFiles(t.Context(), testUser, registry.FileFilter{SortBy: "file_size", SortAsc: true})
	if err != nil {
		t.Fatalf("list by size: %v", err)
	}

	sizes := make([]int64, 0, len(bySize))
	for _, r := range bySize {
		sizes = append(sizes, r.FileSize)
	}

	if len(sizes) != 3 || sizes[0] != 100 || sizes[2] != 300 {
		t.Errorf("expected ascending sizes, got %v", sizes)
	}

	// 不在白名单的排序列退回默认排序，不报错
	if _, err := store.ListFiles(t.Context(), testUser, registry.FileFilter{SortBy: "evil; DROP TABLE"}); err != nil {
		t.Errorf("unexpected error for unknown sort column: %v", err)
	}
}

// TestToggleFavoriteRoundTrip 收藏标记反转并持久化.
func TestToggleFavoriteRoundTrip(t *testing.T) {
	store := openTestStore(t)

	a := insertAccount(t, store, model.StorageAccount{Name: "a"})

	record := model.FileRecord{
		UserID:       testUser,
		AccountID:    a.ID,
		FilePath:     testUser + "/fav.jpg",
		FileName:     "fav.jpg",
		OriginalName: "fav.jpg",
		FileType:     model.TypePhoto,
		FileSize:     10,
		UploadedAt:   time.Now().UTC(),
	}
	if err := store.InsertFile(t.Context(), &record); err != nil {
		t.Fatalf("insert: %v", err)
	}

	on, err := store.ToggleFavorite(t.Context(), testUser, record.ID)
	if err != nil || !on {
		t.Fatalf("expected favorite on, got %v %v", on, err)
	}

	got, err := store.GetFile(t.Context(), testUser, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !got.IsFavorite {
		t.Error("favorite flag should be persisted")
	}

	// 别的用户看不到也改不了
	if _, err := store.ToggleFavorite(t.Context(), "stranger@example.com", record.ID); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}

// TestIncrementDownloads 下载计数逐次累加.
func TestIncrementDownloads(t *testing.T) {
	store := openTestStore(t)

	a := insertAccount(t, store, model.StorageAccount{Name: "a"})

	record := model.FileRecord{
		UserID:       testUser,
		AccountID:    a.ID,
		FilePath:     testUser + "/dl.jpg",
		FileName:     "dl.jpg",
		OriginalName: "dl.jpg",
		FileType:     model.TypePhoto,
		FileSize:     10,
		UploadedAt:   time.Now().UTC(),
	}
	if err := store.InsertFile(t.Context(), &record); err != nil {
		t.Fatalf("insert: %v", err)
	}

	for range 3 {
		if err := store.IncrementDownloads(t.Context(), record.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	got, err := store.GetFile(t.Context(), testUser, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.DownloadCount != 3 {
		t.Errorf("expected download count 3, got %d", got.DownloadCount)
	}
}
