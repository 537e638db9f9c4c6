package main

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hometrackerhq/hometracker/internal/config"
)

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

// --- tasks ---

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage maintenance tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a maintenance task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		dueDate, _ := cmd.Flags().GetString("due")
		priority, _ := cmd.Flags().GetString("priority")
		category, _ := cmd.Flags().GetString("category")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]any{
			"Title":    title,
			"DueDate":  dueDate,
			"Priority": priority,
			"Category": category,
		}
		resp, err := client.post("/tasks", body)
		if err != nil {
			return err
		}

		var task struct {
			ID    string
			Title string
		}
		if err := decodeJSON(resp, &task); err != nil {
			return err
		}

		printSuccess("Added task %q (%s)", task.Title, task.ID)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List maintenance tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		pendingOnly, _ := cmd.Flags().GetBool("pending")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/tasks"
		if pendingOnly {
			path = "/tasks?status=pending"
		}
		resp, err := client.get(path)
		if err != nil {
			return err
		}

		var tasks []struct {
			ID       string
			Title    string
			Status   string
			Priority string
			DueDate  string
		}
		if err := decodeJSON(resp, &tasks); err != nil {
			return err
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		for _, t := range tasks {
			due := t.DueDate
			if due == "" {
				due = "no due date"
			}
			fmt.Printf("%s  [%s/%s]  %s  (%s)\n",
				colorize(colorCyan, t.ID[:8]),
				t.Status, t.Priority, t.Title, due,
			)
		}
		return nil
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, _ := cmd.Flags().GetFloat64("cost")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]any{}
		if cost > 0 {
			body["actual_cost"] = cost
		}
		resp, err := client.post("/tasks/"+args[0]+"/complete", body)
		if err != nil {
			return err
		}

		var task struct {
			Title         string
			CompletedDate string
		}
		if err := decodeJSON(resp, &task); err != nil {
			return err
		}

		printSuccess("Completed %q on %s", task.Title, task.CompletedDate)
		return nil
	},
}

func init() {
	taskAddCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	taskAddCmd.Flags().String("priority", "", "priority: low, medium, high, urgent")
	taskAddCmd.Flags().String("category", "", "task category")
	taskListCmd.Flags().Bool("pending", false, "show only pending tasks")
	taskCompleteCmd.Flags().Float64("cost", 0, "actual cost of the work")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCompleteCmd)
}

// --- documents ---

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage documents",
}

var docUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document and queue it for extraction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		category, _ := cmd.Flags().GetString("category")

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		var content string
		if strings.HasPrefix(contentType, "text/") || contentType == "application/json" {
			content = string(data)
		} else {
			content = base64.StdEncoding.EncodeToString(data)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]any{
			"name":         filepath.Base(path),
			"category":     category,
			"content_type": contentType,
			"content":      content,
		}
		resp, err := client.post("/documents", body)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Queued document %s for extraction", result["id"])
		return nil
	},
}

func init() {
	docUploadCmd.Flags().String("category", "", "document category: manual, receipt, invoice, warranty, photo, other")
	docCmd.AddCommand(docUploadCmd)
}

// --- context ---

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the current home status snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, _ := cmd.Flags().GetString("tier")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/context?tier=" + tier)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result["context"])
		return nil
	},
}

func init() {
	contextCmd.Flags().String("tier", "full", "detail tier: full, prose, compact, summary")
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask Maple, the home assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post("/maple/chat", map[string]string{"message": message})
		if err != nil {
			return err
		}

		var reply struct {
			Message string `json:"message"`
			Action  *struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			} `json:"action"`
			NavigateTo string `json:"navigate_to"`
		}
		if err := decodeJSON(resp, &reply); err != nil {
			return err
		}

		fmt.Println(reply.Message)
		if reply.Action != nil {
			if reply.Action.Success {
				printSuccess("%s", reply.Action.Message)
			} else {
				printWarning("%s", reply.Action.Message)
			}
		}
		return nil
	},
}
