package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/rainier/internal/catalog"
	"github.com/ppiankov/rainier/internal/model"
	"github.com/ppiankov/rainier/internal/questions"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the ASC 606 review categories and their trigger phrases",
	Long: `List the phrase table used for flagging, in scan order.

Uses the built-in table unless catalog.file (or --catalog) points at a YAML override.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if catalogFile != "" {
			cfg.Catalog.File = catalogFile
		}

		categories, err := catalog.Load(cfg.Catalog.File)
		if err != nil {
			return fmt.Errorf("load phrase table: %w", err)
		}
		return printCategories(cmd.OutOrStdout(), categories)
	},
}

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the legal questions asked of each contract",
	Long: `List the contract review questions sent to the AI model.

Uses the built-in CUAD questions unless questions.file (or --questions) points
at a CUAD-format question file. questions.indices selects which entries are asked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if questionFile != "" {
			cfg.Questions.File = questionFile
		}

		qs, err := questions.NewLoader().Load(cfg.Questions.File, cfg.Questions.Indices)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		return printQuestions(cmd.OutOrStdout(), qs)
	},
}

func init() {
	categoriesCmd.Flags().StringVar(&catalogFile, "catalog", "", "phrase table YAML (default: built-in table)")
	questionsCmd.Flags().StringVar(&questionFile, "questions", "", "CUAD-format question file (default: built-in questions)")

	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(questionsCmd)
}

func printCategories(w io.Writer, categories []model.Category) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHRASES")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, strings.Join(c.Phrases, ", "))
	}
	return tw.Flush()
}

func printQuestions(w io.Writer, qs []model.Question) error {
	for _, q := range qs {
		if _, err := fmt.Fprintf(w, "[%d] %s\n", q.Index, q.Text); err != nil {
			return err
		}
	}
	return nil
}
