package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tablerohq/tablero/internal/models"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE:  runUserList,
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new user",
	RunE:  runUserAdd,
}

var userRmCmd = &cobra.Command{
	Use:   "rm [user-id]",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserRm,
}

var (
	userName     string
	userEmail    string
	userPass     string
	userRole     string
	userDept     string
	userCompany  string
	userPhone    string
)

func init() {
	userCmd.AddCommand(userListCmd, userAddCmd, userRmCmd)

	userAddCmd.Flags().StringVar(&userName, "name", "", "Full name (required)")
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Email (required)")
	userAddCmd.Flags().StringVar(&userPass, "password", "", "Initial password (required)")
	userAddCmd.Flags().StringVar(&userRole, "role", "collaborator", "Role (admin, manager, collaborator, client)")
	userAddCmd.Flags().StringVar(&userDept, "department", "", "Department")
	userAddCmd.Flags().StringVar(&userCompany, "company", "", "Company")
	userAddCmd.Flags().StringVar(&userPhone, "phone", "", "Phone in international format")
	userAddCmd.MarkFlagRequired("name")
	userAddCmd.MarkFlagRequired("email")
	userAddCmd.MarkFlagRequired("password")
}

func runUserList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	users, err := client.Users().List(ctx)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tSTATUS")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(u.ID), u.Name, u.Email, u.Role, u.Status)
	}
	w.Flush()
	return nil
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	user, err := client.Users().Register(ctx, models.UserDraft{
		Name:       userName,
		Email:      userEmail,
		Password:   userPass,
		Role:       models.Role(userRole),
		Department: userDept,
		Company:    userCompany,
		Phone:      userPhone,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s (%s)\n", user.Email, truncateID(user.ID))
	return nil
}

func runUserRm(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := client.Users().Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted user %s\n", truncateID(args[0]))
	return nil
}
