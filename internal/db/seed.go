package db

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/models"
	"yatube/internal/utils"
)

// DefaultGroups are created on first start.
var DefaultGroups = []models.Group{
	{Title: "Лев Толстой", Slug: "leo", Description: "Группа поклонников графа."},
	{Title: "Путешествия", Slug: "travel", Description: "Куда поехать и что посмотреть."},
	{Title: "Кулинария", Slug: "cooking", Description: "Рецепты и истории о еде."},
}

// DemoPassword is the password of every seeded user.
const DemoPassword = "yatube-demo"

// SeedDemo fills the database with fake users, posts, comments and follows.
func SeedDemo(gdb *gorm.DB, numUsers, numPosts int, log *zap.Logger) error {
	if err := SeedGroups(gdb, DefaultGroups, log); err != nil {
		return err
	}

	var groups []models.Group
	if err := gdb.Find(&groups).Error; err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	hash, err := utils.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	users := make([]models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user := models.User{
			Username:  fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Password:  hash,
		}
		if err := gdb.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil
	}
	log.Info("Seeded users", zap.Int("count", len(users)))

	return gdb.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < numPosts; i++ {
			author := users[gofakeit.Number(0, len(users)-1)]
			post := models.Post{
				Text:     gofakeit.Paragraph(1, 3, 8, "\n"),
				AuthorID: &author.ID,
			}
			if len(groups) > 0 && gofakeit.Bool() {
				post.GroupID = &groups[gofakeit.Number(0, len(groups)-1)].ID
			}
			if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
				return fmt.Errorf("create post: %w", err)
			}

			for j := gofakeit.Number(0, 3); j > 0; j-- {
				commenter := users[gofakeit.Number(0, len(users)-1)]
				comment := models.Comment{PostID: post.ID, AuthorID: commenter.ID, Text: gofakeit.Sentence(8)}
				if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
			}
		}

		for _, user := range users {
			author := users[gofakeit.Number(0, len(users)-1)]
			if author.ID == user.ID {
				continue
			}
			edge := models.Follow{UserID: user.ID, AuthorID: author.ID}
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
				return fmt.Errorf("create follow: %w", err)
			}
		}

		log.Info("Seeded posts", zap.Int("count", numPosts))
		return nil
	})
}
