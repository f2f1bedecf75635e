package main

import (
	"fmt"
	"os"

	"yatube/internal/cache"
	"yatube/internal/repository"
	"yatube/internal/seed"
	"yatube/internal/service"

	"github.com/spf13/cobra"
)

var seedOpts = seed.DefaultOptions()

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo users, posts, comments and follows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, db, err := connectMigrated(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := seed.DefaultGroups(cmd.Context(), db); err != nil {
			return err
		}
		sum, err := seed.Seed(cmd.Context(), db, seedOpts)
		if err != nil {
			return err
		}
		cmd.Printf("users=%d posts=%d comments=%d follows=%d (password %q)\n",
			sum.Users, sum.Posts, sum.Comments, sum.Follows, seed.DemoPassword)
		return nil
	},
}

var loadGroupsCmd = &cobra.Command{
	Use:   "load-groups [file]",
	Short: "Upsert groups from a YAML fixture file, or the built-in set",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := connectMigrated(cmd.Context())
		if err != nil {
			return err
		}

		var res service.FixtureResult
		if len(args) == 0 {
			res, err = seed.DefaultGroups(cmd.Context(), db)
		} else {
			res, err = loadGroupFile(cmd, args[0], service.NewGroupService(repository.NewGroupRepository(db)))
		}
		if err != nil {
			return err
		}
		cmd.Printf("groups created=%d updated=%d\n", res.Created, res.Updated)
		return nil
	},
}

func loadGroupFile(cmd *cobra.Command, path string, groups *service.GroupService) (service.FixtureResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return service.FixtureResult{}, err
	}
	defer func() { _ = f.Close() }()

	fixtures, err := service.ParseFixtures(f)
	if err != nil {
		return service.FixtureResult{}, fmt.Errorf("%s: %w", path, err)
	}
	return groups.LoadFixtures(cmd.Context(), fixtures)
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop every cached index page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := connect()
		if err != nil {
			return err
		}
		client, err := cache.InitRedis(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer func() { _ = client.Close() }()

		if err := cache.NewRedisStore(client, cache.PagePrefix).Reset(); err != nil {
			return err
		}
		cmd.Println("page cache cleared")
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Users, "users", seedOpts.Users, "number of users")
	f.IntVar(&seedOpts.Posts, "posts", seedOpts.Posts, "number of posts")
	f.IntVar(&seedOpts.CommentsPerPost, "comments", seedOpts.CommentsPerPost, "comments per post")
	f.IntVar(&seedOpts.FollowsPerUser, "follows", seedOpts.FollowsPerUser, "follows per user")
	f.Int64Var(&seedOpts.RandSeed, "seed", seedOpts.RandSeed, "random seed, 0 for time based")
	f.BoolVar(&seedOpts.SkipBcrypt, "skip-bcrypt", seedOpts.SkipBcrypt, "store an unusable password hash")
	f.BoolVar(&seedOpts.DryRun, "dry-run", false, "roll back instead of committing")

	rootCmd.AddCommand(seedCmd, loadGroupsCmd, clearCacheCmd)
}
