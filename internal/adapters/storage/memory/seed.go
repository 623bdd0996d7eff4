package memory

import (
	"context"
	"time"

	"sam-requests/internal/domain/services"
	"sam-requests/internal/domain/users"
)

// SeedDemoData carga el catálogo de servicios del campus y un usuario por
// rol, para poder probar el flujo completo en dev sin IAM real.
func SeedDemoData(ctx context.Context, userRepo users.Repository, serviceRepo services.Repository) error {
	now := time.Now()

	defs := []services.ServiceDef{
		{ID: "svc-enfermeria", Name: "ENFERMERIA", Description: "Atención de salud en sala", Active: true, CreatedAt: now},
		{ID: "svc-servicios-generales", Name: "SERVICIOS GENERALES", Description: "Aseo y mantención", Active: true, CreatedAt: now.Add(-time.Minute)},
		{ID: "svc-soporte", Name: "SOPORTE CETECOM", Description: "Soporte de equipos y proyectores", Active: true, CreatedAt: now.Add(-2 * time.Minute)},
		{ID: "svc-seguridad", Name: "SEGURIDAD", Description: "Seguridad del campus", Active: true, CreatedAt: now.Add(-3 * time.Minute)},
	}
	for _, d := range defs {
		if err := serviceRepo.Create(ctx, d); err != nil {
			return err
		}
	}

	demo := []users.User{
		{ID: "u-docente", Name: "Daniela Docente", Email: "docente@demo.local", Role: users.RoleDocente},
		{ID: "u-admin", Name: "Andrés Admin", Email: "admin@demo.local", Role: users.RoleAdmin},
		{ID: "u-salud", Name: "Sofía Salud", Email: "salud@demo.local", Role: users.RoleSalud},
		{ID: "u-servicios", Name: "Gabriel General", Email: "servicios@demo.local", Role: users.RoleServiciosGenerales},
		{ID: "u-soporte", Name: "Tomás Técnico", Email: "soporte@demo.local", Role: users.RoleSoporte},
		{ID: "u-seguridad", Name: "Sergio Seguridad", Email: "seguridad@demo.local", Role: users.RoleSeguridad},
	}
	for _, u := range demo {
		if err := userRepo.Create(ctx, u); err != nil {
			return err
		}
	}
	return nil
}
