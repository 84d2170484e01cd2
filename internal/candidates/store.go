// Package candidates is the MongoDB document store for uploaded candidates.
package candidates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const timeout = 10 * time.Second

var ErrNotFound = errors.New("candidate not found")

type Status string

const (
	StatusUploaded           Status = "uploaded"
	StatusScreening          Status = "screening"
	StatusScreened           Status = "screened"
	StatusFailed             Status = "failed"
	StatusInterviewScheduled Status = "interview_scheduled"
)

// Analysis is the structured resume assessment produced by the screening agent.
type Analysis struct {
	MatchScore          int      `bson:"match_score" json:"match_score"`
	RelevantExperiences []string `bson:"relevant_experiences" json:"relevant_experiences"`
	RelevantSkills      []string `bson:"relevant_skills" json:"relevant_skills"`
	MissingSkills       []string `bson:"missing_skills" json:"missing_skills"`
	Summary             string   `bson:"summary" json:"summary"`
	Recommendation      string   `bson:"recommendation" json:"recommendation"`
	IsErrorResult       bool     `bson:"is_error_result" json:"is_error_result"`
	Error               string   `bson:"error,omitempty" json:"error,omitempty"`
}

type Candidate struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	Filename     string             `bson:"filename" json:"filename"`
	ObjectKey    string             `bson:"object_key,omitempty" json:"object_key,omitempty"`
	Mime         string             `bson:"mime" json:"mime"`
	ResumeText   string             `bson:"resume_text" json:"-"`
	MatchScore   float64            `bson:"match_score" json:"match_score"`
	JobPostingID string             `bson:"job_posting_id,omitempty" json:"job_posting_id,omitempty"`
	Status       Status             `bson:"status" json:"status"`
	Analysis     *Analysis          `bson:"analysis,omitempty" json:"analysis,omitempty"`
	Interview    *time.Time         `bson:"interview_at,omitempty" json:"interview_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Store manages all interactions with the candidates collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect opens a client and binds the store to database/collection for the
// lifetime of the process.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// NewStore wraps an existing collection.
func NewStore(collection *mongo.Collection) *Store {
	return &Store{collection: collection}
}

// Ping checks that the server behind the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the lookup indexes used by the admin views.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "match_score", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create candidate indexes: %w", err)
	}
	return nil
}

// Insert stores a new candidate, assigning its ID and timestamps.
func (s *Store) Insert(ctx context.Context, c *Candidate) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Email = normalizeEmail(c.Email)
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = StatusUploaded
	}
	if _, err := s.collection.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert candidate %s: %w", c.Email, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Candidate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid candidate id %q: %w", id, ErrNotFound)
	}
	return s.findOne(ctx, bson.M{"_id": oid}, nil)
}

// FindByEmail returns the most recent upload for email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*Candidate, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.findOne(ctx, bson.M{"email": normalizeEmail(email)}, opts)
}

func (s *Store) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var c Candidate
	var err error
	if opts != nil {
		err = s.collection.FindOne(ctx, filter, opts).Decode(&c)
	} else {
		err = s.collection.FindOne(ctx, filter).Decode(&c)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	return &c, nil
}

// List returns candidates, best match first. An empty jobPostingID lists all.
func (s *Store) List(ctx context.Context, jobPostingID string) ([]Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	filter := bson.M{}
	if jobPostingID != "" {
		filter["job_posting_id"] = jobPostingID
	}
	opts := options.Find().SetSort(bson.D{{Key: "match_score", Value: -1}})
	cur, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer cur.Close(ctx)

	out := []Candidate{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return out, nil
}

// UpdateScreening records the agent's analysis and the resulting status.
func (s *Store) UpdateScreening(ctx context.Context, id primitive.ObjectID, analysis *Analysis, status Status) error {
	return s.update(ctx, bson.M{"_id": id}, bson.M{
		"analysis": analysis,
		"status":   status,
	})
}

func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) error {
	return s.update(ctx, bson.M{"_id": id}, bson.M{"status": status})
}

// ScheduleInterview sets the interview time on a candidate.
func (s *Store) ScheduleInterview(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	at = at.UTC()
	return s.update(ctx, bson.M{"_id": id}, bson.M{
		"interview_at": at,
		"status":       StatusInterviewScheduled,
	})
}

func (s *Store) update(ctx context.Context, filter bson.M, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	set["updated_at"] = time.Now().UTC()
	res, err := s.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
