package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hairtrack/hairtrack-api/internal/app"
	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/domain/capture"
	"github.com/hairtrack/hairtrack-api/internal/domain/user"
)

// parsePhotos reads repeated angle=path flags.
func parsePhotos(values []string) (map[analysis.Angle]string, error) {
	photos := make(map[analysis.Angle]string, len(values))
	for _, v := range values {
		name, path, ok := strings.Cut(v, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --photo %q, expected angle=path", v)
		}
		angle, err := analysis.ParseAngle(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("invalid --photo %q: %w", v, err)
		}
		if _, dup := photos[angle]; dup {
			return nil, fmt.Errorf("angle %s given twice", angle)
		}
		photos[angle] = path
	}
	if len(photos) < capture.MinPhotos {
		return nil, fmt.Errorf("at least %d photos are required", capture.MinPhotos)
	}
	return photos, nil
}

func newAnalyzeCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	var (
		userFlag string
		photos   []string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a scalp analysis for a user from local photos",
		Long: `Drives the capture wizard for the user with the given photos, submits it
and prints the stored result. The user's current wizard is reset first.`,
		Example: `  hairctl analyze --user 6f1c... --photo top=./top.jpg --photo crown=./crown.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			files, err := parsePhotos(photos)
			if err != nil {
				return err
			}

			cfg, err := g.config()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, opts...)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := user.NewRepository(a.DB).GetByID(ctx, userID)
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("user %s not found", userID)
			}

			svc := a.Capture
			if _, err := svc.Reset(ctx, userID); err != nil {
				return err
			}
			if _, err := svc.Fire(ctx, userID, capture.EventStart); err != nil {
				return err
			}
			for _, info := range analysis.Angles() {
				path, ok := files[info.Angle]
				if !ok {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s photo: %w", info.Label, err)
				}
				if _, err := svc.SetPhoto(ctx, userID, info.Angle, capture.Upload{
					Method:      capture.MethodFile,
					Filename:    filepath.Base(path),
					ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
					Data:        data,
				}); err != nil {
					return fmt.Errorf("%s photo rejected: %w", info.Label, err)
				}
			}
			for range analysis.Angles() {
				if _, err := svc.Fire(ctx, userID, capture.EventSkip); err != nil {
					return err
				}
			}

			w, err := svc.Submit(ctx, userID)
			if err != nil {
				return err
			}
			if w.Step == capture.StepError && w.Failure != nil {
				return errors.New(w.Failure.Message + " " + w.Failure.Guidance)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(capture.WizardResponseFromEntity(w).Result)
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID")
	cmd.Flags().StringArrayVar(&photos, "photo", nil, "Photo as angle=path (top, hairline, left_temple, right_temple, crown); repeatable")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("photo")

	return cmd
}
