package candidates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func candidateDoc(id primitive.ObjectID, email string, score float64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "email", Value: email},
		{Key: "filename", Value: "cv.pdf"},
		{Key: "mime", Value: "application/pdf"},
		{Key: "match_score", Value: score},
		{Key: "status", Value: string(StatusScreened)},
		{Key: "analysis", Value: bson.D{
			{Key: "match_score", Value: int32(81)},
			{Key: "summary", Value: "strong publication record"},
		}},
	}
}

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert assigns id and normalizes email", func(mt *mtest.T) {
		store := NewStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c := &Candidate{Email: " Ada@Uni.EDU ", Filename: "cv.pdf", MatchScore: 0.72}
		require.NoError(t, store.Insert(context.Background(), c))

		assert.False(t, c.ID.IsZero())
		assert.Equal(t, "ada@uni.edu", c.Email)
		assert.Equal(t, StatusUploaded, c.Status)
		assert.False(t, c.CreatedAt.IsZero())
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		store := NewStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		err := store.Insert(context.Background(), &Candidate{Email: "a@b.c"})
		assert.Error(t, err)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		store := NewStore(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "faculty_recruitment.candidates", mtest.FirstBatch,
			candidateDoc(id, "ada@uni.edu", 0.81)))

		c, err := store.FindByEmail(context.Background(), "ADA@uni.edu")
		require.NoError(t, err)
		assert.Equal(t, id, c.ID)
		assert.Equal(t, 0.81, c.MatchScore)
		require.NotNil(t, c.Analysis)
		assert.Equal(t, 81, c.Analysis.MatchScore)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		store := NewStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "faculty_recruitment.candidates", mtest.FirstBatch))

		_, err := store.FindByEmail(context.Background(), "ghost@uni.edu")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("get rejects malformed id", func(mt *mtest.T) {
		store := NewStore(mt.Coll)
		_, err := store.Get(context.Background(), "not-an-object-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		store := NewStore(mt.Coll)
		first := mtest.CreateCursorResponse(1, "faculty_recruitment.candidates", mtest.FirstBatch,
			candidateDoc(primitive.NewObjectID(), "a@uni.edu", 0.9),
			candidateDoc(primitive.NewObjectID(), "b@uni.edu", 0.4))
		end := mtest.CreateCursorResponse(0, "faculty_recruitment.candidates", mtest.NextBatch)
		mt.AddMockResponses(first, end)

		list, err := store.List(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "a@uni.edu", list[0].Email)
	})

	mt.Run("schedule interview", func(mt *mtest.T) {
		store := NewStore(mt.Coll)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		err := store.ScheduleInterview(context.Background(), primitive.NewObjectID(), time.Now().Add(48*time.Hour))
		assert.NoError(t, err)
	})

	mt.Run("update unknown candidate", func(mt *mtest.T) {
		store := NewStore(mt.Coll)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := store.UpdateScreening(context.Background(), primitive.NewObjectID(), &Analysis{Summary: "x"}, StatusScreened)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
