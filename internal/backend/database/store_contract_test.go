package database

import (
	"context"
	"reflect"
	"testing"
)

// testFile returns metadata shaped like a real upload.
func testFile(name string) FileMetadata {
	return FileMetadata{
		FieldName:    "image",
		OriginalName: name,
		Encoding:     "7bit",
		MimeType:     "image/jpeg",
		Destination:  "uploads/",
		FileName:     "0f3c2a9d8e7b4c1aa1b2c3d4e5f60718",
		Path:         "uploads/0f3c2a9d8e7b4c1aa1b2c3d4e5f60718",
		Size:         2048,
	}
}

// testDatabaseService exercises the behaviour every DatabaseService backend must share.
func testDatabaseService(t *testing.T, newDB func(t *testing.T) DatabaseService) {
	t.Run("DoesDatabaseExist", func(t *testing.T) {
		ds := newDB(t)
		if !ds.DoesDatabaseExist() {
			t.Fatalf("expected DoesDatabaseExist to return true")
		}
	})

	t.Run("CreateImage_ReturnsFullRecord", func(t *testing.T) {
		ds := newDB(t)
		ctx := context.Background()

		file := testFile("car.jpg")
		img, err := ds.CreateImage(ctx, "Image uploaded successfully", "street", []string{"Car", "Tree"}, file)
		if err != nil {
			t.Fatalf("CreateImage error: %v", err)
		}
		if img.ID <= 0 {
			t.Errorf("expected positive id, got %d", img.ID)
		}
		if img.Message != "Image uploaded successfully" {
			t.Errorf("unexpected message %q", img.Message)
		}
		if img.Label != "street" {
			t.Errorf("unexpected label %q", img.Label)
		}
		if !reflect.DeepEqual(img.Objects, []string{"Car", "Tree"}) {
			t.Errorf("unexpected objects %v", img.Objects)
		}
		if img.File != file {
			t.Errorf("unexpected file metadata %+v", img.File)
		}
	})

	t.Run("CreateImage_IDsStrictlyIncrease", func(t *testing.T) {
		ds := newDB(t)
		ctx := context.Background()

		var last int64
		for i := 0; i < 5; i++ {
			img, err := ds.CreateImage(ctx, "m", "l", []string{"Dog"}, testFile("dog.jpg"))
			if err != nil {
				t.Fatalf("CreateImage #%d error: %v", i, err)
			}
			if img.ID <= last {
				t.Fatalf("id %d is not greater than previous id %d", img.ID, last)
			}
			last = img.ID
		}
	})

	t.Run("CreateImage_NilObjectsStoredAsEmpty", func(t *testing.T) {
		ds := newDB(t)
		ctx := context.Background()

		img, err := ds.CreateImage(ctx, "m", "l", nil, testFile("blank.png"))
		if err != nil {
			t.Fatalf("CreateImage error: %v", err)
		}
		if img.Objects == nil || len(img.Objects) != 0 {
			t.Errorf("expected empty non-nil objects, got %#v", img.Objects)
		}

		got, err := ds.GetImageByID(ctx, img.ID)
		if err != nil {
			t.Fatalf("GetImageByID error: %v", err)
		}
		if got.Objects == nil || len(got.Objects) != 0 {
			t.Errorf("expected empty non-nil objects after read, got %#v", got.Objects)
		}
	})

	t.Run("GetImageByID_ReadYourWrites", func(t *testing.T) {
		ds := newDB(t)
		ctx := context.Background()

		created, err := ds.CreateImage(ctx, "m", "No label provided", []string{"Cat", "Cat", "Bird"}, testFile("cat.jpg"))
		if err != nil {
			t.Fatalf("CreateImage error: %v", err)
		}

		got, err := ds.GetImageByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetImageByID error: %v", err)
		}
		if got == nil {
			t.Fatalf("GetImageByID returned nil; expected image")
		}
		if !reflect.DeepEqual(got, created) {
			t.Errorf("read record differs from created record:\n got  %+v\n want %+v", got, created)
		}
	})

	t.Run("GetImageByID_Missing", func(t *testing.T) {
		ds := newDB(t)

		got, err := ds.GetImageByID(context.Background(), 4242)
		if err != nil {
			t.Fatalf("GetImageByID(missing) error: %v", err)
		}
		if got != nil {
			t.Fatalf("GetImageByID(missing) returned %+v; expected nil", got)
		}
	})

	t.Run("GetAllImages_AscendingID", func(t *testing.T) {
		ds := newDB(t)
		ctx := context.Background()

		empty, err := ds.GetAllImages(ctx)
		if err != nil {
			t.Fatalf("GetAllImages(empty) error: %v", err)
		}
		if len(empty) != 0 {
			t.Fatalf("expected no images, got %d", len(empty))
		}

		var want []int64
		for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
			img, err := ds.CreateImage(ctx, "m", name, []string{name}, testFile(name))
			if err != nil {
				t.Fatalf("CreateImage(%s) error: %v", name, err)
			}
			want = append(want, img.ID)
		}

		images, err := ds.GetAllImages(ctx)
		if err != nil {
			t.Fatalf("GetAllImages error: %v", err)
		}
		if len(images) != len(want) {
			t.Fatalf("expected %d images, got %d", len(want), len(images))
		}
		for i, img := range images {
			if img.ID != want[i] {
				t.Errorf("images[%d].ID = %d, want %d", i, img.ID, want[i])
			}
			if img.File.OriginalName != img.Label {
				t.Errorf("images[%d] file metadata not decoded: %+v", i, img.File)
			}
		}
	})
}
