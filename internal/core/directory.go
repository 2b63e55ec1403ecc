package core

import (
	"github.com/samber/lo"
)

type identity struct {
	name  string
	hotel string
}

// Directory tracks identified clients by (name, hotel).
type Directory struct {
	clients map[identity]*Client
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{clients: make(map[identity]*Client)}
}

func identityOf(c *Client) identity {
	return identity{name: c.Profile.Name, hotel: c.Profile.Hotel}
}

// Lookup returns the client registered under name and hotel.
func (d *Directory) Lookup(name, hotel string) (*Client, bool) {
	c, ok := d.clients[identity{name: name, hotel: hotel}]
	return c, ok
}

// Add registers c under its profile identity. It returns false when another
// client already holds that identity.
func (d *Directory) Add(c *Client) bool {
	key := identityOf(c)
	if existing, ok := d.clients[key]; ok {
		return existing == c
	}
	d.clients[key] = c
	return true
}

// Remove deletes c if it is the client registered under its identity.
func (d *Directory) Remove(c *Client) bool {
	key := identityOf(c)
	if existing, ok := d.clients[key]; !ok || existing != c {
		return false
	}
	delete(d.clients, key)
	return true
}

// Contains reports whether c is registered.
func (d *Directory) Contains(c *Client) bool {
	existing, ok := d.clients[identityOf(c)]
	return ok && existing == c
}

// Clients returns every registered client except the given ones.
func (d *Directory) Clients(except ...*Client) []*Client {
	return lo.Filter(lo.Values(d.clients), func(c *Client, _ int) bool {
		return !lo.Contains(except, c)
	})
}

// Len returns the number of identified clients.
func (d *Directory) Len() int {
	return len(d.clients)
}
