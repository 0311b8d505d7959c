package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"projsync/internal/gh"
	"projsync/internal/models"
	"projsync/internal/output"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a GitHub repository to a project",
	Long: `Connect a GitHub repository to a project.

Without flags this walks through repository selection interactively:
your repositories are listed, you pick one, preview its details and
confirm the connection.

With --repo the named repository is connected directly:

  pjs connect --project myproject --repo owner/name`,
	RunE: runConnect,
}

var (
	connectProject   string
	connectRepo      string
	connectRepoType  string
	connectSort      string
	connectDirection string
)

func init() {
	rootCmd.AddCommand(connectCmd)

	connectCmd.Flags().StringVarP(&connectProject, "project", "p", "", "Project to connect (defaults to the default project)")
	connectCmd.Flags().StringVarP(&connectRepo, "repo", "r", "", "Repository to connect as owner/name (skips the interactive flow)")
	connectCmd.Flags().StringVar(&connectRepoType, "type", "owner", "Repository affiliation filter (all, owner, member)")
	connectCmd.Flags().StringVar(&connectSort, "sort", "full_name", "Sort key (created, updated, pushed, full_name)")
	connectCmd.Flags().StringVar(&connectDirection, "direction", "asc", "Sort direction (asc, desc)")
}

func runConnect(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(connectProject)
	if err != nil {
		return err
	}
	if project.Connected {
		return fmt.Errorf("project '%s' already has a connected repository (disconnect it first)", project.Name)
	}

	syncer, err := newSyncer()
	if err != nil {
		return err
	}

	if connectRepo != "" {
		return connectDirect(syncer, project, connectRepo)
	}
	return connectInteractive(syncer, project)
}

func connectDirect(syncer *gh.Syncer, project *models.Project, fullName string) error {
	ctx := context.Background()
	link, err := syncer.Connect(ctx, project, fullName)
	if err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Repository(link)
	} else {
		f.Success(fmt.Sprintf("Connected %s to project '%s'", link.FullName, project.Name))
		f.Info("Run 'pjs sync branches' to mirror branches locally")
	}
	return nil
}

func connectInteractive(syncer *gh.Syncer, project *models.Project) error {
	wizard := gh.NewConnectWizard(syncer, project)

	fmt.Printf("Fetching repositories (type=%s, sort=%s %s)...\n", connectRepoType, connectSort, connectDirection)
	if err := wizard.FetchRepositories(context.Background(), connectRepoType, connectSort, connectDirection); err != nil {
		return err
	}

	fmt.Printf("\nFound %d repositories (%d public, %d private)\n\n",
		wizard.TotalCount, wizard.PublicCount, wizard.PrivateCount)
	for i, row := range wizard.Rows {
		fmt.Printf("  %3d. %s\n", i+1, row.DisplayName())
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("\nSelect a repository by number (or q to quit): ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "q" || input == "quit" {
			fmt.Println("Cancelled")
			return nil
		}

		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(wizard.Rows) {
			fmt.Printf("Enter a number between 1 and %d\n", len(wizard.Rows))
			continue
		}

		if err := wizard.Select(wizard.Rows[idx-1].FullName); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		preview, err := wizard.Preview()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Println()
		fmt.Println(preview)

		fmt.Print("Connect this repository? [y/N/b(ack)]: ")
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		switch answer {
		case "y", "yes":
			link, err := wizard.Connect(context.Background())
			if err != nil {
				return err
			}
			f := output.New(IsJSONOutput())
			f.Success(fmt.Sprintf("Connected %s to project '%s'", link.FullName, project.Name))
			f.Info("Run 'pjs sync branches' to mirror branches locally")
			return nil
		case "b", "back":
			wizard.Back()
			continue
		default:
			fmt.Println("Cancelled")
			return nil
		}
	}
}
