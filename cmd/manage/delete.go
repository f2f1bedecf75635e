package main

import (
	"fmt"
	"strconv"

	"yatube/internal/config"
	"yatube/internal/repository"
	"yatube/internal/service"
	"yatube/internal/storage"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// postService builds the post service on the configured media storage so
// deletes also remove uploaded images and thumbnails.
func postService(cfg *config.Config, db *gorm.DB) (*service.PostService, error) {
	media, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open media storage: %w", err)
	}
	images := service.NewImageService(media, nil)
	return service.NewPostService(repository.NewPostRepository(db), repository.NewGroupRepository(db), images), nil
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user <username>",
	Short: "Delete a user with their posts, comments and follows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := connect()
		if err != nil {
			return err
		}
		posts, err := postService(cfg, db)
		if err != nil {
			return err
		}
		users := repository.NewUserRepository(db)
		u, err := users.GetByUsername(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		images, err := posts.ImagePathsByAuthor(cmd.Context(), u.ID)
		if err != nil {
			return err
		}
		if err := users.Delete(cmd.Context(), u.ID); err != nil {
			return err
		}
		posts.RemoveImages(cmd.Context(), images)
		cmd.Printf("deleted user %s and %d images\n", u.Username, len(images))
		return nil
	},
}

var deleteGroupCmd = &cobra.Command{
	Use:   "delete-group <slug>",
	Short: "Delete a group; its posts stay, ungrouped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := connect()
		if err != nil {
			return err
		}
		groups := repository.NewGroupRepository(db)
		g, err := groups.GetBySlug(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := groups.Delete(cmd.Context(), g.ID); err != nil {
			return err
		}
		cmd.Printf("deleted group %s\n", g.Slug)
		return nil
	},
}

var deletePostCmd = &cobra.Command{
	Use:   "delete-post <id>",
	Short: "Delete a post with its comments and image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid post id %q", args[0])
		}
		cfg, db, err := connect()
		if err != nil {
			return err
		}
		posts, err := postService(cfg, db)
		if err != nil {
			return err
		}
		if err := posts.Delete(cmd.Context(), uint(id)); err != nil {
			return err
		}
		cmd.Printf("deleted post %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteUserCmd, deleteGroupCmd, deletePostCmd)
}
