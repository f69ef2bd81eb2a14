// Command kitchen-display is a terminal client for the kitchen. It
// keeps a synchronized view of the order pipeline: a full fetch on
// start and after every reconnect, push events in between. The merge
// logic tolerates duplicated and reordered events, so the display can
// never show a ticket moving backwards.
package main

import (
    "encoding/json"
    "flag"
    "fmt"
    "log"
    "net/http"
    "net/url"
    "sort"
    "strings"
    "time"

    "github.com/gorilla/websocket"

    "github.com/quangtd/restaurant-table-orders/internal/broadcast"
    "github.com/quangtd/restaurant-table-orders/internal/model"
    "github.com/quangtd/restaurant-table-orders/internal/view"
)

func main() {
    server := flag.String("server", "http://localhost:8080", "API base URL")
    token := flag.String("token", "", "kitchen access token")
    flag.Parse()
    if *token == "" {
        log.Fatal("usage: kitchen-display -token <access token> [-server url]")
    }

    d := display{
        base:  strings.TrimRight(*server, "/"),
        token: *token,
        sync:  view.NewSynchronizer(model.RoleKitchen),
        http:  &http.Client{Timeout: 10 * time.Second},
    }

    backoff := time.Second
    for {
        if err := d.run(); err != nil {
            log.Printf("connection lost: %v; reconnecting in %s", err, backoff)
        }
        d.sync.MarkStale()
        time.Sleep(backoff)
        if backoff < 30*time.Second {
            backoff *= 2
        }
    }
}

type display struct {
    base  string
    token string
    sync  *view.Synchronizer
    http  *http.Client
}

// run performs one connect cycle: reconcile via full fetch, then apply
// push events until the socket drops.
func (d *display) run() error {
    if err := d.refetch(); err != nil {
        return fmt.Errorf("fetch orders: %w", err)
    }
    d.render()

    wsURL, err := d.wsURL()
    if err != nil {
        return err
    }
    conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
    if err != nil {
        return fmt.Errorf("dial: %w", err)
    }
    defer conn.Close()

    hello, _ := json.Marshal(map[string][]string{"scopes": {broadcast.ScopeKitchen}})
    if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
        return fmt.Errorf("declare scopes: %w", err)
    }
    log.Println("connected; watching kitchen events")

    for {
        var ev broadcast.Event
        if err := conn.ReadJSON(&ev); err != nil {
            return err
        }
        if d.sync.ApplyEvent(ev) {
            d.render()
        }
    }
}

func (d *display) wsURL() (string, error) {
    u, err := url.Parse(d.base)
    if err != nil {
        return "", err
    }
    switch u.Scheme {
    case "https":
        u.Scheme = "wss"
    default:
        u.Scheme = "ws"
    }
    u.Path = "/v1/ws"
    q := u.Query()
    q.Set("token", d.token)
    u.RawQuery = q.Encode()
    return u.String(), nil
}

// refetch replaces the local cache with the server's current order
// list. Called on start and after every gap.
func (d *display) refetch() error {
    req, err := http.NewRequest(http.MethodGet, d.base+"/v1/orders", nil)
    if err != nil {
        return err
    }
    req.Header.Set("Authorization", "Bearer "+d.token)

    resp, err := d.http.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return fmt.Errorf("server returned %s", resp.Status)
    }

    var body struct {
        Orders []model.Order `json:"orders"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
        return err
    }
    d.sync.ResetFromFetch(body.Orders)
    return nil
}

var kitchenTabs = []struct {
    bucket view.Bucket
    title  string
}{
    {view.BucketPending, "NEW"},
    {view.BucketPreparing, "PREPARING"},
    {view.BucketDone, "DONE"},
}

func (d *display) render() {
    buckets := d.sync.Buckets()
    fmt.Printf("\n==== kitchen @ %s ====\n", time.Now().Format("15:04:05"))
    for _, tab := range kitchenTabs {
        orders := buckets[tab.bucket]
        sort.Slice(orders, func(i, j int) bool {
            return orders[i].CreatedAt.Before(orders[j].CreatedAt) // oldest ticket first
        })
        fmt.Printf("-- %s (%d)\n", tab.title, len(orders))
        for _, o := range orders {
            fmt.Printf("  #%d table %d [%s]\n", o.Number, o.TableNumber, o.Status)
            for _, it := range o.Items {
                line := fmt.Sprintf("     %dx %s", it.Quantity, it.Name)
                if it.Instructions != "" {
                    line += " (" + it.Instructions + ")"
                }
                fmt.Println(line)
            }
        }
    }
}
