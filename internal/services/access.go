package services

import "yatube/internal/models"

// CanEditPost reports whether user may change post. Posts without an author are
// editable by nobody.
func CanEditPost(user *models.User, post *models.Post) bool {
	if user == nil || post == nil || post.AuthorID == nil {
		return false
	}
	return *post.AuthorID == user.ID
}

// CanFollow reports whether user may subscribe to author.
func CanFollow(user, author *models.User) bool {
	if user == nil || author == nil {
		return false
	}
	return user.ID != author.ID
}
