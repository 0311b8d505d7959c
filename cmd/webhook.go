package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage repository webhooks",
}

var webhookCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a webhook on the connected repository",
	Long: `Register a webhook on the connected GitHub repository.

The delivery URL is built from the configured webhook base URL plus a
generated opaque path segment. Event subscriptions are controlled by
flags; with no event flags the hook subscribes to push events only.

A webhook secret is required. Configure the base URL first:

  pjs config github --webhook-url https://pm.example.com`,
	RunE: runWebhookCreate,
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List webhooks registered for a project",
	RunE:  runWebhookList,
}

var (
	webhookProject      string
	webhookName         string
	webhookSecret       string
	webhookPush         bool
	webhookPullRequests bool
	webhookIssues       bool
	webhookWorkflowJobs bool
	webhookNoSSLVerify  bool
)

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookCreateCmd)
	webhookCmd.AddCommand(webhookListCmd)

	webhookCmd.PersistentFlags().StringVarP(&webhookProject, "project", "p", "", "Project (defaults to the default project)")

	webhookCreateCmd.Flags().StringVar(&webhookName, "name", "", "Display name for the webhook")
	webhookCreateCmd.Flags().StringVar(&webhookSecret, "secret", "", "Shared secret for payload signatures (required)")
	webhookCreateCmd.Flags().BoolVar(&webhookPush, "push", true, "Subscribe to push events")
	webhookCreateCmd.Flags().BoolVar(&webhookPullRequests, "pull-requests", false, "Subscribe to pull request events")
	webhookCreateCmd.Flags().BoolVar(&webhookIssues, "issues", false, "Subscribe to issue events")
	webhookCreateCmd.Flags().BoolVar(&webhookWorkflowJobs, "workflow-jobs", false, "Subscribe to workflow job events")
	webhookCreateCmd.Flags().BoolVar(&webhookNoSSLVerify, "no-ssl-verify", false, "Disable SSL verification for deliveries")
}

func runWebhookCreate(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(webhookProject)
	if err != nil {
		return err
	}
	syncer, err := newSyncer()
	if err != nil {
		return err
	}

	name := webhookName
	if name == "" {
		name = fmt.Sprintf("%s webhook", project.Name)
	}

	hook := &models.Webhook{
		Name:              name,
		ProjectID:         project.ID,
		Secret:            webhookSecret,
		PushEvents:        webhookPush,
		PullRequestEvents: webhookPullRequests,
		IssuesEvents:      webhookIssues,
		WorkflowJobEvents: webhookWorkflowJobs,
		SSLVerification:   !webhookNoSSLVerify,
	}

	if err := syncer.CreateWebhook(context.Background(), project, hook); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.JSON(hook)
		return nil
	}
	f.Success(fmt.Sprintf("Webhook registered (remote id %d)", hook.RemoteID))
	f.KeyValue("Events", fmt.Sprintf("%v", hook.Events()))
	f.KeyValue("Path", hook.Path)
	return nil
}

func runWebhookList(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(webhookProject)
	if err != nil {
		return err
	}

	var hooks []models.Webhook
	if err := db.GetDB().Where("project_id = ?", project.ID).Find(&hooks).Error; err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.JSON(hooks)
		return nil
	}
	if len(hooks) == 0 {
		f.Info("No webhooks registered")
		return nil
	}
	for _, h := range hooks {
		fmt.Printf("  %s (remote id %d, events %v, ssl verify %t)\n",
			h.Name, h.RemoteID, h.Events(), h.SSLVerification)
	}
	return nil
}
