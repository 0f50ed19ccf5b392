// Package seed holds the demo dataset loaded by `mingas seed`.
package seed

import (
	"context"
	"time"

	"mingas-api/internal/db"
	"mingas-api/internal/models"
)

// Loader is the store side of seeding.
type Loader interface {
	Reload(ctx context.Context, events []db.SeedEvent) (db.ReloadStats, error)
}

// at returns midnight UTC of now plus days, shifted by hour.
func at(now time.Time, days, hour int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+days, hour, 0, 0, 0, time.UTC)
}

// Dataset returns four upcoming events and one past event, dated
// relative to now.
func Dataset(now time.Time) []db.SeedEvent {
	return []db.SeedEvent{
		{
			Title:       "Minga de Limpieza del Parque Central",
			Description: "Actividad comunitaria para la limpieza y mantenimiento del parque central de la ciudad. Incluye recolección de basura, poda de plantas y embellecimiento de espacios verdes.",
			Date:        at(now, 14, 9),
			Location:    "Parque Central, Calle Principal #123, Centro de la Ciudad",
			Participants: []models.ParticipantInput{
				{Name: "María Elena González Pérez", Email: "maria.gonzalez@email.com"},
				{Name: "Carlos Roberto Pérez Mendoza", Email: "carlos.perez@email.com"},
				{Name: "Ana Lucía Rodríguez Silva", Email: "ana.rodriguez@email.com"},
				{Name: "José Miguel Torres Vargas", Email: "jose.torres@email.com"},
			},
		},
		{
			Title:       "Sembratón de Árboles Nativos",
			Description: "Jornada de siembra de especies nativas en la zona rural para la recuperación de la biodiversidad local. Se proporcionarán herramientas y refrigerio.",
			Date:        at(now, 21, 8),
			Location:    "Sector La Esperanza, km 15 vía rural hacia la montaña",
			Participants: []models.ParticipantInput{
				{Name: "Laura Patricia Jiménez Castro", Email: "laura.jimenez@email.com"},
				{Name: "Diego Alejandro Morales Ruiz", Email: "diego.morales@email.com"},
				{Name: "Carmen Rosa Delgado Herrera", Email: "carmen.delgado@email.com"},
			},
		},
		{
			Title:       "Huerta Comunitaria - Taller de Compostaje",
			Description: "Aprende a crear compost casero para tu huerta familiar. Taller práctico con expertos en agricultura sostenible.",
			Date:        at(now.AddDate(0, 1, 0), 0, 14),
			Location:    "Centro Comunitario La Unión, Barrio San José",
			Participants: []models.ParticipantInput{
				{Name: "Ricardo Manuel Vásquez León", Email: "ricardo.vasquez@email.com"},
				{Name: "Sandra Milena Castillo Mora", Email: "sandra.castillo@email.com"},
			},
		},
		{
			Title:       "Limpieza de Quebrada El Cristal",
			Description: "Actividad de recuperación ambiental de la quebrada El Cristal. Incluye retiro de residuos sólidos y siembra de plantas acuáticas.",
			Date:        at(now, 35, 7),
			Location:    "Quebrada El Cristal, entrada por el puente de la Calle 10",
			Participants: []models.ParticipantInput{
				{Name: "Gabriel Fernando Ortiz Ramos", Email: "gabriel.ortiz@email.com"},
			},
		},
		{
			Title:       "Mercado Agroecológico Comunitario (Pasado)",
			Description: "Feria de productos orgánicos y artesanales de la región. Apoyo a productores locales y consumo consciente.",
			Date:        at(now, -7, 10),
			Location:    "Plaza del Mercado, Centro Histórico",
			Participants: []models.ParticipantInput{
				{Name: "Beatriz Elena Guerrero Sánchez", Email: "beatriz.guerrero@email.com"},
				{Name: "Fernando José Ramírez Aguilar", Email: "fernando.ramirez@email.com"},
				{Name: "Claudia Esperanza Vargas Mejía", Email: "claudia.vargas@email.com"},
			},
		},
	}
}

// Run replaces the store contents with Dataset(now).
func Run(ctx context.Context, l Loader, now time.Time) (db.ReloadStats, error) {
	return l.Reload(ctx, Dataset(now))
}
