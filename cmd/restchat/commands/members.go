package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"restchat/internal/domain"
	"restchat/internal/permission"
)

func membersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage chat membership",
	}
	cmd.AddCommand(membersAddCmd(), membersRemoveCmd())
	return cmd
}

func membersAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <chat-id> <user-id>",
		Short: "Add a user to a chat you own",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			chatID, userID, err := chatAndUserIDs(args)
			if err != nil {
				return err
			}
			if _, _, err := checkOwner(ctx, chatID); err != nil {
				return err
			}
			members, err := appCtx.Mutations.AddMember(ctx, chatID, userID)
			if err != nil {
				return err
			}
			fmt.Printf("chat %d now has %d member(s)\n", chatID, members.Meta.Count)
			return nil
		},
	}
}

func membersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <chat-id> <user-id>",
		Short: "Remove a user from a chat you own",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			chatID, userID, err := chatAndUserIDs(args)
			if err != nil {
				return err
			}
			me, detail, err := checkOwner(ctx, chatID)
			if err != nil {
				return err
			}
			if !permission.CanRemoveMember(me, detail.Chat, domain.User{ID: userID}) {
				return fmt.Errorf("the owner cannot be removed from their own chat")
			}
			members, err := appCtx.Mutations.RemoveMember(ctx, chatID, userID)
			if err != nil {
				return err
			}
			fmt.Printf("chat %d now has %d member(s)\n", chatID, members.Meta.Count)
			return nil
		},
	}
}

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			snap, err := await(appCtx.Queries.Users(ctx))
			if err != nil {
				return err
			}
			for _, u := range snap.Value.(domain.UserList).Users {
				fmt.Printf("%4d  %s\n", u.ID, u.Username)
			}
			return nil
		},
	}
}

func chatAndUserIDs(args []string) (chatID, userID int, err error) {
	chatID, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad chat id %q", args[0])
	}
	userID, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad user id %q", args[1])
	}
	return chatID, userID, nil
}

// checkOwner gates membership edits locally; the server re-checks regardless.
// It returns the resolved identity so callers can run further checks without
// resolving it again.
func checkOwner(ctx context.Context, chatID int) (domain.Identity, domain.ChatDetail, error) {
	me, err := currentIdentity(ctx)
	if err != nil {
		return domain.Identity{}, domain.ChatDetail{}, err
	}
	snap, err := await(appCtx.Queries.ChatWithMembers(ctx, chatID))
	if err != nil {
		return domain.Identity{}, domain.ChatDetail{}, err
	}
	detail := snap.Value.(domain.ChatDetail)
	if !permission.CanManageChat(me, detail.Chat) {
		return domain.Identity{}, domain.ChatDetail{}, fmt.Errorf(
			"only the owner (%s) can manage this chat's members", detail.Chat.Owner.Username)
	}
	return me, detail, nil
}
