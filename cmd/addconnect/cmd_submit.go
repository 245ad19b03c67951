package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bilgisen/addconnect/internal/intake"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/spf13/cobra"
)

var errValidation = errors.New("submission rejected")

// report prints field errors or the form's confirmation and turns the
// outcome into the command's exit status
func (a *cli) report(form intake.Form, err error) error {
	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Fields {
			fmt.Fprintf(a.errOut, "  %s: %s\n", fe.Field, fe.Message)
		}
		return errValidation
	}
	if err != nil {
		return fmt.Errorf("%s: %w", form.Status().Message, err)
	}
	fmt.Fprintln(a.out, form.Status().Message)
	return nil
}

func typeHelp() string {
	return "content type: trend, technology or inspiration"
}

func (a *cli) manualCmd() *cobra.Command {
	var v intake.ManualValues

	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Submit a content item typed in by hand",
		Example: `  addconnect manual --type trend --title "Circular fashion" \
    --summary "Resale and repair become default retail channels" --tags "retail, textiles"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := intake.NewManualForm(a.backend())
			form.SetValues(v)
			return a.report(form, form.Submit(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&v.Type, "type", "", typeHelp())
	cmd.Flags().StringVar(&v.Title, "title", "", "title, at least 3 characters")
	cmd.Flags().StringVar(&v.Summary, "summary", "", "summary, at least 10 characters")
	cmd.Flags().StringVar(&v.SourceURL, "source-url", "", "optional source link")
	cmd.Flags().StringVar(&v.Tags, "tags", "", "comma separated tags")
	return cmd
}

func (a *cli) urlCmd() *cobra.Command {
	var (
		v       intake.URLValues
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "url <link>",
		Short: "Import a content item from a link",
		Long: `Imports a link as a content item. With --preview the backend's link preview
is loaded first and its title, description, image and site are submitted along;
a failed preview is reported and the link is imported without it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v.URL = args[0]
			form := intake.NewURLForm(a.backend(), a.options())
			form.SetValues(v)

			if preview {
				if err := form.FetchPreview(cmd.Context()); err != nil {
					var verr *intake.ValidationError
					if errors.As(err, &verr) {
						return a.report(form, err)
					}
					fmt.Fprintf(a.errOut, "%s: %v\n", form.Status().Message, err)
				} else if p := form.Preview(); p != nil {
					fmt.Fprintf(a.errOut, "Preview: %s\n", models.Deref(p.Title))
				}
			}
			return a.report(form, form.Submit(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&v.Type, "type", "", typeHelp())
	cmd.Flags().StringVar(&v.Tags, "tags", "", "comma separated tags")
	cmd.Flags().BoolVar(&preview, "preview", false, "load the link preview before importing")
	return cmd
}

func (a *cli) previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <link>",
		Short: "Show the backend's link preview as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.backend().FetchPreview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

func (a *cli) fileCmd() *cobra.Command {
	var (
		contentType string
		title       string
		tags        string
	)

	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Upload a file as a content item",
		Long: `Uploads a file with its metadata. The path may also be pasted from a file
manager (file:// URLs, quoted or backslash-escaped paths are accepted).
Upload progress is written to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := intake.NewFileForm(a.backend())
			form.SetMetadata(contentType, title, tags)
			if err := form.ChooseFile(args[0]); err != nil {
				return a.report(form, err)
			}

			last := -1
			form.SetObserver(func(state intake.State, progress int) {
				if state == intake.Uploading && progress != last {
					last = progress
					fmt.Fprintf(a.errOut, "\rUploading... %3d%%", progress)
				}
			})
			err := form.Submit(cmd.Context())
			if last >= 0 {
				fmt.Fprintln(a.errOut)
			}
			return a.report(form, err)
		},
	}

	cmd.Flags().StringVar(&contentType, "type", "", typeHelp())
	cmd.Flags().StringVar(&title, "title", "", "title, at least 3 characters")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	return cmd
}
