package repo

import (
	"context"
	"errors"
	"time"

	"github.com/beka-birhanu/duo-platformer/game"
	"github.com/beka-birhanu/duo-platformer/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNilMatchID   = errors.New("match id is nil")
	ErrNoSuchResult = errors.New("match result not found")
)

var _ i.MatchResultRepo = &MatchResultRepo{}

// matchResultDoc is the stored form of a game.RaceResult.
type matchResultDoc struct {
	ID         string    `bson:"_id"`
	Winner     string    `bson:"winner"`
	Loser      string    `bson:"loser"`
	FinishedAt time.Time `bson:"finishedAt"`
}

// MatchResultRepo handles the persistence of race results.
type MatchResultRepo struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMatchResultRepo creates a new MatchResultRepo with the given MongoDB client, database name, and collection name.
func NewMatchResultRepo(client *mongo.Client, dbName, collectionName string) *MatchResultRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &MatchResultRepo{
		collection: collection,
		now:        time.Now,
	}
}

// Save stores the result of a match. The first saved result of a match id is kept; later
// saves for the same id leave it untouched.
func (r *MatchResultRepo) Save(ctx context.Context, result game.RaceResult) error {
	if result.MatchID == uuid.Nil {
		return ErrNilMatchID
	}

	filter := bson.M{"_id": result.MatchID.String()}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, saveUpdate(result, r.now()), opts); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

func saveUpdate(result game.RaceResult, now time.Time) bson.M {
	return bson.M{
		"$setOnInsert": bson.M{
			"winner":     result.Winner,
			"loser":      result.Loser,
			"finishedAt": now.UTC(),
		},
	}
}

// ByMatchID retrieves the result of a match.
func (r *MatchResultRepo) ByMatchID(ctx context.Context, id uuid.UUID) (game.RaceResult, error) {
	var doc matchResultDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return game.RaceResult{}, ErrNoSuchResult
		}
		return game.RaceResult{}, errors.New("unexpected error: " + err.Error())
	}

	matchID, err := uuid.Parse(doc.ID)
	if err != nil {
		return game.RaceResult{}, err
	}
	return game.RaceResult{MatchID: matchID, Winner: doc.Winner, Loser: doc.Loser}, nil
}
