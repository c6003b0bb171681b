package database

import (
	"context"

	"gorm.io/gorm"
)

type Database struct {
	db           *gorm.DB
	userRepo     *UserRepo
	blogRepo     *BlogRepo
	commentRepo  *CommentRepo
	categoryRepo *CategoryRepo
	tagRepo      *TagRepo
	reactionRepo *ReactionRepo
	otpRepo      *OTPRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		userRepo:     NewUserRepo(db),
		blogRepo:     NewBlogRepo(db),
		commentRepo:  NewCommentRepo(db),
		categoryRepo: NewCategoryRepo(db),
		tagRepo:      NewTagRepo(db),
		reactionRepo: NewReactionRepo(db),
		otpRepo:      NewOTPRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) BlogRepo() *BlogRepo {
	return d.blogRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) ReactionRepo() *ReactionRepo {
	return d.reactionRepo
}

func (d Database) OTPRepo() *OTPRepo {
	return d.otpRepo
}

func (d Database) Health(ctx context.Context) map[string]string {
	return Health(ctx, d.db)
}
