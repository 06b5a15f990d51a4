package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

var (
	topicFlag = &cli.StringFlag{
		Name: "topic",
		Usage: fmt.Sprintf(
			"the event triggering the webhook, one of %s",
			strings.Join(ports.Topics(), ", "),
		),
		Value: ports.AnyTopic,
	}

	webhook = cli.Command{
		Name:  "webhook",
		Usage: "add or remove webhooks",
		Subcommands: []*cli.Command{
			webhookAddCmd, webhookRemoveCmd,
		},
	}
	webhooks = cli.Command{
		Name:   "webhooks",
		Usage:  "list the webhooks of a topic, all of them by default",
		Flags:  []cli.Flag{topicFlag},
		Action: listWebhooksAction,
	}

	webhookAddCmd = &cli.Command{
		Name:  "add",
		Usage: "add a (secured) webhook endpoint called whenever the topic event occurs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "endpoint",
				Usage:    "the webhook endpoint to be called whenever the event occurs",
				Required: true,
			},
			&cli.StringFlag{
				Name: "secret",
				Usage: "the eventual secret used to sign the bearer token " +
					"authenticating requests to the endpoint",
			},
			topicFlag,
		},
		Action: addWebhookAction,
	}

	webhookRemoveCmd = &cli.Command{
		Name:  "remove",
		Usage: "remove a webhook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "the id of the webhook to remove",
				Required: true,
			},
		},
		Action: removeWebhookAction,
	}
)

type webhookView struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

func addWebhookAction(ctx *cli.Context) error {
	id, err := appConfig.PubSub.Subscribe(
		ctx.String(topicFlag.Name), ctx.String("endpoint"), ctx.String("secret"),
	)
	if err != nil {
		return err
	}

	printRespJSON(map[string]string{"id": id})
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	if err := appConfig.PubSub.Unsubscribe(ctx.String("id")); err != nil {
		return err
	}

	printRespJSON(map[string]string{"status": "webhook removed"})
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	topic := ctx.String(topicFlag.Name)
	subs := make([]ports.Subscription, 0)
	if topic == ports.AnyTopic {
		for _, t := range ports.Topics() {
			if t == ports.AnyTopic {
				continue
			}
			for _, s := range appConfig.PubSub.ListSubscriptionsForTopic(t) {
				if s.Topic() == t {
					subs = append(subs, s)
				}
			}
		}
	}
	subs = append(subs, appConfig.PubSub.ListSubscriptionsForTopic(topic)...)

	views := make([]webhookView, 0, len(subs))
	for _, s := range subs {
		views = append(views, webhookView{
			ID:        s.Id(),
			Topic:     s.Topic(),
			Endpoint:  s.NotifyAt(),
			IsSecured: s.IsSecured(),
		})
	}
	printRespJSON(map[string]interface{}{"webhooks": views})
	return nil
}
