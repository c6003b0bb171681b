package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zakdoc/blog-backend/models"
)

type ReactionRepo struct {
	db *gorm.DB
}

func NewReactionRepo(db *gorm.DB) *ReactionRepo {
	return &ReactionRepo{db}
}

// ReactionTotals are the like and dislike counts of one blog
type ReactionTotals struct {
	Likes    int64 `json:"totalLikes"`
	Dislikes int64 `json:"totalDislikes"`
}

// Set records kind as the user's only reaction on the blog, replacing any previous one
func (r *ReactionRepo) Set(ctx context.Context, blogID, userID uuid.UUID, kind models.ReactionKind) (ReactionTotals, error) {
	var totals ReactionTotals
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reaction := models.BlogReaction{BlogID: blogID, UserID: userID, Kind: kind}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blog_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind", "created_at"}),
		}).Create(&reaction).Error
		if err != nil {
			return err
		}
		totals, err = reactionTotals(tx, blogID)
		return err
	})
	return totals, err
}

func reactionTotals(db *gorm.DB, blogID uuid.UUID) (ReactionTotals, error) {
	var rows []struct {
		Kind  models.ReactionKind
		Total int64
	}
	err := db.Model(&models.BlogReaction{}).
		Select("kind, COUNT(*) AS total").
		Where("blog_id = ?", blogID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return ReactionTotals{}, err
	}

	var totals ReactionTotals
	for _, row := range rows {
		switch row.Kind {
		case models.ReactionLike:
			totals.Likes = row.Total
		case models.ReactionDislike:
			totals.Dislikes = row.Total
		}
	}
	return totals, nil
}
