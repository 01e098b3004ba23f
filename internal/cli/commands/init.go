package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/suwa-sh/lineage-to-graph/internal/cli/config"
	"github.com/suwa-sh/lineage-to-graph/internal/cli/output"
)

const initConfigTemplate = `# l2g configuration
input: lineage.yaml
# output: lineage.md
columns_dir: columns
schemas_dir: schemas
direction: LR
`

const initDocumentTemplate = `direction: LR

models:
  - name: OrderService
    type: program
    children:
      - name: Order
        props: [id, total]

lineage:
  - from: orders_table.id
    to: OrderService.Order.id
  - from: orders_table.amount
    to: OrderService.Order.total
    transform: to_decimal
  - from: "JPY"
    to: OrderService.Order.total
`

const initColumnsTemplate = `column
id
amount
created_at
`

const exampleDocumentTemplate = `direction: LR

models:
  - name: OrderService
    type: program
    children:
      - name: Order

lineage:
  - from: orders_table.id
    to: OrderService.Order.id
  - from: [orders_table.amount, orders_table.currency]
    to: OrderService.Order.total
    transform: to_money
  - from: customers_table.email
    to: OrderService.Order.contact
  - from: OrderService.Order.total
    to: PaymentGateway.Charge.amount
  - from: "JPY"
    to: PaymentGateway.Charge.currency
`

const exampleOrdersColumns = `column
id
amount
currency
created_at
`

const exampleCustomersColumns = `column
id
email
name
`

const exampleSchemaTemplate = `model:
  name: PaymentGateway
  type: program
  children:
    - $ref: "#/models/Charge"

models:
  Charge:
    type: program
    props: [amount, currency, status]
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new lineage project",
		Long: `Initialize a new lineage project with a starter document and configuration.

This creates:
  - l2g.yaml configuration file
  - lineage.yaml starter document
  - columns/ directory with a sample column list

Use --example to create a larger demo wiring a schema document, multiple
column lists, instances, and literal values together.`,
		Example: `  # Initialize in current directory
  l2g init

  # Initialize in a new directory
  l2g init my-flows

  # Initialize with a full working example
  l2g init --example

  # Force overwrite existing files
  l2g init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			files := scaffoldFiles(dir, example)
			return runInit(r, dir, files, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Create a full example project with schemas and column lists")

	return cmd
}

func scaffoldFiles(dir string, example bool) map[string]string {
	if example {
		return map[string]string{
			filepath.Join(dir, config.ConfigFileName):                   initConfigTemplate,
			filepath.Join(dir, "lineage.yaml"):                          exampleDocumentTemplate,
			filepath.Join(dir, "columns", "orders_table.csv"):           exampleOrdersColumns,
			filepath.Join(dir, "columns", "customers_table.csv"):        exampleCustomersColumns,
			filepath.Join(dir, "schemas", "PaymentGateway.yaml"):        exampleSchemaTemplate,
		}
	}
	return map[string]string{
		filepath.Join(dir, config.ConfigFileName):         initConfigTemplate,
		filepath.Join(dir, "lineage.yaml"):                initDocumentTemplate,
		filepath.Join(dir, "columns", "orders_table.csv"): initColumnsTemplate,
	}
}

func runInit(r *output.Renderer, dir string, files map[string]string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists. Use --force to overwrite", path)
		}
	}

	for _, path := range paths {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(files[path]), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		r.Success(path)
	}

	r.Println("")
	r.Success("Lineage project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Describe your models and flows in lineage.yaml")
	r.Println("  2. Drop column lists for datastores into columns/")
	r.Println("  3. Run 'l2g generate' to render the diagram")
	r.Println("  4. Run 'l2g check' to validate the document")

	return nil
}
