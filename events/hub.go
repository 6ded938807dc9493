package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/crewplex/workforce-app/models"
)

// Event types
const (
	EventShiftUpdate       = "shift_update"
	EventShiftFulfillment  = "shift_fulfillment"
	EventAssignmentUpdate  = "assignment_update"
	EventTimesheetUpdate   = "timesheet_update"
	EventStaffNotification = "staff_notification"
	EventDashboardUpdate   = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every live dashboard client (admin, company user, crew chief)
// keyed by role.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection to the set with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastShiftUpdate announces a shift create/update.
func BroadcastShiftUpdate(shift models.Shift) {
	broadcast(Message{
		Event: EventShiftUpdate,
		Data:  shift,
	})
}

// BroadcastShiftFulfillment pushes a recomputed staffing summary for a shift.
func BroadcastShiftFulfillment(shiftID uint, summary interface{}) {
	broadcast(Message{
		Event: EventShiftFulfillment,
		Data: map[string]interface{}{
			"shift_id": shiftID,
			"summary":  summary,
		},
	})
}

// BroadcastAssignmentUpdate announces an assignment lifecycle change.
func BroadcastAssignmentUpdate(ap models.AssignedPersonnel) {
	broadcast(Message{
		Event: EventAssignmentUpdate,
		Data:  ap,
	})
}

// BroadcastTimesheetUpdate announces an approval-pipeline transition.
func BroadcastTimesheetUpdate(ts models.Timesheet) {
	broadcast(Message{
		Event: EventTimesheetUpdate,
		Data:  ts,
	})
}

// BroadcastStaffNotification pushes a plain notification message.
func BroadcastStaffNotification(message string) {
	broadcast(Message{
		Event: EventStaffNotification,
		Data:  message,
	})
}

// BroadcastDashboardUpdate pushes refreshed dashboard stats.
func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{
		Event: EventDashboardUpdate,
		Data:  data,
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	if len(hub.clients) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending %s event to %s client: %v", msg.Event, role, err)
			continue
		}
	}
}
