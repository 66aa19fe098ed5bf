package destination

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/internal/usecase/enrichment"
	"github.com/lezatlabs/scheduling-backend/pkg/clients"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

// Factory resolves a tenant's settings snapshot into live destination
// clients. Clients are cheap to build, so one set is constructed per
// dispatch rather than cached; tokens rotate between deliveries and a
// fresh build always sees the latest snapshot.
type Factory struct {
	cfg *config.Config
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// KanbanDestinations returns one destination per fully configured Kanban
// tool, in stable order.
func (f *Factory) KanbanDestinations(settings *entities.IntegrationSettings) []enrichment.KanbanDestination {
	var destinations []enrichment.KanbanDestination
	if settings.HasNotion() {
		destinations = append(destinations, &notionDestination{
			client: clients.NewNotionClient(&f.cfg.Notion, settings.NotionAPIToken, settings.NotionTasksDatabaseID),
		})
	}
	if settings.HasMonday() {
		destinations = append(destinations, &mondayDestination{
			client: clients.NewMondayClient(&f.cfg.Monday, settings.MondayAPIToken, settings.MondayBoardID, settings.MondayGroupID),
		})
	}
	return destinations
}

// Calendar returns the tenant's calendar destination, or nil when none
// is configured. Events use the tenant's timezone; an unparseable one
// normalizes to UTC, an unset one falls back to the configured default.
func (f *Factory) Calendar(settings *entities.IntegrationSettings) enrichment.CalendarDestination {
	if !settings.HasCalendar() {
		return nil
	}
	tokens := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken:  settings.GoogleCalendarToken,
		RefreshToken: settings.GoogleCalendarRefreshToken,
	})
	timezone := ""
	if settings.Timezone != "" {
		timezone = settings.Location().String()
	}
	return clients.NewGoogleCalendarClient(&f.cfg.Calendar, tokens, settings.GoogleCalendarID, timezone)
}

type notionDestination struct {
	client *clients.NotionClient
}

func (d *notionDestination) Kind() entities.DestinationKind { return entities.DestinationNotion }

func (d *notionDestination) CreateTask(ctx context.Context, meetingID string, item entities.ActionItem) (string, error) {
	return d.client.CreateTask(ctx, meetingID, item)
}

type mondayDestination struct {
	client *clients.MondayClient
}

func (d *mondayDestination) Kind() entities.DestinationKind { return entities.DestinationMonday }

func (d *mondayDestination) CreateTask(ctx context.Context, meetingID string, item entities.ActionItem) (string, error) {
	return d.client.CreateTask(ctx, meetingID, item)
}
